package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"sentarb/internal/pkg/convert"
	"sentarb/internal/pkg/jsonutil"
	"sentarb/internal/types"
)

const maxLevels = 3

// taBlockSchema is a shape gate, not a value gate: the root must map token
// symbols to objects. Value-level hardening (strings for prices, junk RSI)
// is the coercion layer's job, so the schema stays deliberately loose.
const taBlockSchema = `{
	"type": "object",
	"minProperties": 1,
	"additionalProperties": {"type": "object"}
}`

var taSchema = jsonschema.MustCompileString("ta_block.json", taBlockSchema)

var (
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:price|current)[\s:]+\$?([\d.]+)`),
		regexp.MustCompile(`"current_price":\s*"?([\d.]+)"?`),
		regexp.MustCompile(`\$([\d.]+)`),
	}
	supportPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)supports?[\s:]+([^\n]+)`),
		regexp.MustCompile(`"support_levels":\s*\[([^\]]+)\]`),
	}
	resistancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)resistances?[\s:]+([^\n]+)`),
		regexp.MustCompile(`"resistance_levels":\s*\[([^\]]+)\]`),
	}
	rsiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)RSI[\s:]+(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`"rsi":\s*(\d+(?:\.\d+)?)`),
	}
	levelNumber  = regexp.MustCompile(`\$?([\d.]+)`)
	trendUpRE    = regexp.MustCompile(`(?i)trend[\s:]+up|uptrend|trending up|bullish`)
	trendDownRE  = regexp.MustCompile(`(?i)trend[\s:]+down|downtrend|trending down|bearish`)
)

type TAParse struct {
	Results map[string]types.TAResult
	Issues  []string
}

// ParseTA extracts per-token technical levels from a batched response. The
// structured block is trusted only when it passes the shape gate; otherwise
// everything falls back to section-scoped pattern matching. A result with
// price 0 is flagged as a soft issue because callers must treat it as
// unusable.
func ParseTA(response string, tokens []string) TAParse {
	out := TAParse{Results: make(map[string]types.TAResult, len(tokens))}

	var structured gjson.Result
	if obj, ok := jsonutil.ExtractObject(response); ok {
		if err := validateTABlock(obj); err == nil {
			structured = gjson.Parse(obj)
		} else {
			out.Issues = append(out.Issues, fmt.Sprintf("ta: structured block rejected: %v", err))
		}
	}

	for _, token := range tokens {
		r := types.EmptyTA(token)
		r.RawResponse = response
		if node := structured.Get(token); node.IsObject() {
			fillTAFromJSON(&r, node)
		} else if section, ok := sectionFor(response, token, tokens); ok {
			fillTAFromText(&r, section)
		} else {
			out.Issues = append(out.Issues, fmt.Sprintf("ta: no section for %s", token))
		}
		if r.CurrentPrice == 0 {
			out.Issues = append(out.Issues, fmt.Sprintf("ta: no usable price for %s", token))
		}
		out.Results[token] = r
	}
	return out
}

func validateTABlock(obj string) error {
	dec := json.NewDecoder(strings.NewReader(obj))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return taSchema.Validate(v)
}

func fillTAFromJSON(r *types.TAResult, node gjson.Result) {
	r.CurrentPrice = convert.ToFloat(node.Get("current_price").Value(), 0)
	r.RSI = convert.ToFloat(node.Get("rsi").Value(), 50)
	if trend := strings.TrimSpace(node.Get("trend").String()); trend != "" {
		r.Trend = trend
	}
	r.SupportLevels = levelsFromJSON(node.Get("support_levels"))
	r.ResistanceLevels = levelsFromJSON(node.Get("resistance_levels"))
	switch {
	case containsFold(r.Trend, "bullish") || containsFold(r.Trend, "up"):
		r.Outlook = types.DirectionBullish
	case containsFold(r.Trend, "bearish") || containsFold(r.Trend, "down"):
		r.Outlook = types.DirectionBearish
	}
}

func levelsFromJSON(arr gjson.Result) []float64 {
	if !arr.IsArray() {
		return nil
	}
	var raw []any
	arr.ForEach(func(_, v gjson.Result) bool {
		raw = append(raw, v.Value())
		return true
	})
	return convert.ToFloatSlice(raw, maxLevels)
}

func fillTAFromText(r *types.TAResult, section string) {
	for _, pat := range pricePatterns {
		if m := pat.FindStringSubmatch(section); m != nil {
			r.CurrentPrice = convert.ToFloat(m[1], 0)
			break
		}
	}
	r.SupportLevels = levelsFromText(section, supportPatterns)
	r.ResistanceLevels = levelsFromText(section, resistancePatterns)
	for _, pat := range rsiPatterns {
		if m := pat.FindStringSubmatch(section); m != nil {
			r.RSI = convert.ToFloat(m[1], 50)
			break
		}
	}
	if trendUpRE.MatchString(section) {
		r.Trend = "up"
		r.Outlook = types.DirectionBullish
	} else if trendDownRE.MatchString(section) {
		r.Trend = "down"
		r.Outlook = types.DirectionBearish
	}
	// An explicit outlook statement overrides the trend inference.
	if containsFold(section, "bullish") {
		r.Outlook = types.DirectionBullish
	} else if containsFold(section, "bearish") {
		r.Outlook = types.DirectionBearish
	}
}

func levelsFromText(section string, pats []*regexp.Regexp) []float64 {
	for _, pat := range pats {
		m := pat.FindStringSubmatch(section)
		if m == nil {
			continue
		}
		var raw []any
		for _, num := range levelNumber.FindAllStringSubmatch(m[1], -1) {
			if num[1] == "." {
				continue
			}
			raw = append(raw, num[1])
		}
		return convert.ToFloatSlice(raw, maxLevels)
	}
	return nil
}
