package parse

import (
	"fmt"
	"regexp"

	"sentarb/internal/pkg/convert"
)

// Wallet balance extraction. The upstream is asked to answer in
// "TOKEN: $X.XX" lines but routinely paraphrases, so each token gets a
// sequence of increasingly permissive pattern attempts.

type WalletResult struct {
	Balances map[string]float64
	// Resolved marks tokens whose balance was actually read out of the
	// response (value match or explicit zero). Tokens absent here carry a
	// placeholder 0 that must not be written back as ground truth.
	Resolved map[string]bool
	Issues   []string
}

func walletPatterns(token string) []*regexp.Regexp {
	t := regexp.QuoteMeta(token)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + t + `[:\s]+\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)\$?([\d,]+\.?\d*)\s*(?:USD\s+)?` + t),
		regexp.MustCompile(`(?i)` + t + `[^$]*\$([\d,]+\.?\d*)`),
	}
}

func zeroPattern(token string) *regexp.Regexp {
	t := regexp.QuoteMeta(token)
	return regexp.MustCompile(`(?i)0\s*` + t + `|no\s+` + t + `|` + t + `[:\s]+\$?0`)
}

// ParseWallet reads USD balances for the given tokens out of response.
// Unmatched tokens stay at 0 with a soft issue, unless the response
// explicitly confirms a zero holding.
func ParseWallet(response string, tokens []string) WalletResult {
	res := WalletResult{
		Balances: make(map[string]float64, len(tokens)),
		Resolved: make(map[string]bool, len(tokens)),
	}
	for _, token := range tokens {
		res.Balances[token] = 0
		matched := false
		for _, pat := range walletPatterns(token) {
			m := pat.FindStringSubmatch(response)
			if m == nil {
				continue
			}
			v := convert.ToFloat(m[1], -1)
			if v < 0 {
				continue
			}
			res.Balances[token] = v
			matched = true
			break
		}
		switch {
		case matched:
			res.Resolved[token] = true
		case zeroPattern(token).MatchString(response):
			res.Resolved[token] = true
		default:
			res.Issues = append(res.Issues, fmt.Sprintf("wallet: no balance found for %s", token))
		}
	}
	return res
}
