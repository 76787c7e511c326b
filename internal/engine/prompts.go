package engine

import (
	"fmt"
	"strings"
)

// Prompt builders for the three batched queries of a cycle. Each prompt asks
// for every tracked token at once, and the sentiment and technical prompts
// request a JSON block so the structured extractor gets first shot before
// the regex fallbacks.

func walletPrompt(tokens []string) string {
	all := append([]string{"USDC"}, tokens...)
	return fmt.Sprintf(
		"Check my wallet balances. For each of %s report the USD value I currently hold, one per line in the format TOKEN: $amount. If I hold none of a token, say so explicitly.",
		strings.Join(all, ", "))
}

func sentimentPrompt(tokens []string) string {
	list := strings.Join(tokens, ", ")
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze current social sentiment for each of these tokens: %s.\n", list)
	b.WriteString("For each token give a sentiment score from -100 (extremely bearish) to 100 (extremely bullish), ")
	b.WriteString("the overall direction (bullish, bearish or neutral), and the sentiment change versus 1 hour ago and versus 4 hours ago as percentages.\n")
	b.WriteString("Then summarize everything in a single JSON code block keyed by token symbol, each entry holding ")
	b.WriteString(`"score", "direction", "change_vs_1h" and "change_vs_4h".`)
	return b.String()
}

func taPrompt(tokens []string) string {
	list := strings.Join(tokens, ", ")
	var b strings.Builder
	fmt.Fprintf(&b, "Run a technical analysis for each of these tokens: %s.\n", list)
	b.WriteString("For each token give the current price in USD, the three nearest support levels, the three nearest resistance levels, ")
	b.WriteString("the 14-period RSI, and the prevailing trend (uptrend, downtrend or sideways).\n")
	b.WriteString("Then summarize everything in a single JSON code block keyed by token symbol, each entry holding ")
	b.WriteString(`"current_price", "support_levels", "resistance_levels", "rsi" and "trend".`)
	return b.String()
}
