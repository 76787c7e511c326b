// Package parse turns free-form upstream responses into typed wallet,
// sentiment and TA results. Every parser is total: malformed input degrades
// to neutral defaults plus soft issues, never an error.
package parse

import "strings"

// sectionFor isolates the slice of response that talks about token, ending
// where any of the other tokens is next mentioned. Keyword classification
// must run on this slice only, so one token's "bearish" cannot leak into
// another's result when several tokens share a response.
func sectionFor(response, token string, others []string) (string, bool) {
	start := indexFold(response, token)
	if start == -1 {
		return "", false
	}
	body := response[start+len(token):]
	end := len(body)
	for _, other := range others {
		if strings.EqualFold(other, token) {
			continue
		}
		if idx := indexFold(body, other); idx != -1 && idx < end {
			end = idx
		}
	}
	return strings.TrimSpace(strings.TrimLeft(body[:end], ": \t")), true
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

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
