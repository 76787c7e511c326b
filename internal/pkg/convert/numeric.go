// Package convert hardens scalar values pulled out of upstream text.
// Every numeric field parsed anywhere in this codebase goes through ToFloat.
package convert

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ToFloat converts v to float64, returning def on anything it cannot read.
// Strings are trimmed and stripped of thousands separators and currency
// symbols; an empty string or a bare "." also yields def. It never panics.
func ToFloat(v any, def float64) float64 {
	switch t := v.(type) {
	case nil:
		return def
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return def
		}
		return f
	case string:
		return parseCurrency(t, def)
	default:
		return def
	}
}

func parseCurrency(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// ToFloatSlice converts up to max leading elements of vs, dropping entries
// that coerce to zero. Used for support/resistance level lists where a zero
// price is never a real level.
func ToFloatSlice(vs []any, max int) []float64 {
	out := make([]float64, 0, max)
	for _, v := range vs {
		if len(out) >= max {
			break
		}
		f := ToFloat(v, 0)
		if f > 0 {
			out = append(out, f)
		}
	}
	return out
}
