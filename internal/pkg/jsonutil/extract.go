// Package jsonutil pulls a best-effort JSON object out of free-form model
// output. Strategies run in a fixed order and the first one that yields a
// syntactically valid object wins; later strategies are not attempted.
package jsonutil

import (
	"strings"

	"github.com/tidwall/gjson"
)

const codeFence = "```"

// ExtractObject scans raw for a JSON object using, in order: a fenced block
// labeled "json", any unlabeled fenced block containing a brace-delimited
// object, and finally the first balanced brace substring of the whole text.
// Returns ("", false) when nothing valid is found or raw is empty.
func ExtractObject(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, strat := range []func(string) (string, bool){
		fromLabeledFence,
		fromBareFence,
		fromBraceScan,
	} {
		if obj, ok := strat(raw); ok {
			return obj, true
		}
	}
	return "", false
}

func fromLabeledFence(raw string) (string, bool) {
	idx := indexFold(raw, codeFence+"json")
	if idx == -1 {
		return "", false
	}
	body := raw[idx+len(codeFence)+len("json"):]
	end := strings.Index(body, codeFence)
	if end == -1 {
		return "", false
	}
	return validObject(body[:end])
}

// indexFold is a case-insensitive strings.Index that never indexes through a
// case-folded copy: folding can change byte offsets for some runes, and the
// returned index must stay valid in s itself.
func indexFold(s, sub string) int {
	n := len(sub)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], sub) {
			return i
		}
	}
	return -1
}

func fromBareFence(raw string) (string, bool) {
	start := strings.Index(raw, codeFence)
	if start == -1 {
		return "", false
	}
	rest := raw[start+len(codeFence):]
	end := strings.Index(rest, codeFence)
	if end == -1 {
		return "", false
	}
	block := strings.TrimLeft(rest[:end], "\r\n")
	// Drop an info-string line such as "text" or "yaml".
	if idx := strings.Index(block, "\n"); idx != -1 {
		first := strings.TrimSpace(block[:idx])
		if first != "" && !strings.ContainsAny(first, "{") {
			block = block[idx+1:]
		}
	}
	return validObject(block)
}

func fromBraceScan(raw string) (string, bool) {
	return validObject(raw)
}

// validObject isolates the first balanced {...} in s and checks it parses.
func validObject(s string) (string, bool) {
	obj, ok := braceSpan(s)
	if !ok || !gjson.Valid(obj) {
		return "", false
	}
	return obj, true
}

// braceSpan returns the first brace-balanced substring, honoring strings and
// escapes so braces inside quoted values do not break the depth count.
func braceSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(raw[start : i+1]), true
			}
		}
	}
	return "", false
}
