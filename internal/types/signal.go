package types

// Action is the per-token outcome of one decision pass.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Direction labels for sentiment and TA outlook.
const (
	DirectionBullish = "bullish"
	DirectionBearish = "bearish"
	DirectionNeutral = "neutral"
)

// SentimentResult is recomputed every cycle and never persisted. Zero values
// (score 0, neutral, no deltas) are the degraded default on parse failure.
type SentimentResult struct {
	Token      string  `json:"token"`
	Score      float64 `json:"score"` // -100..100
	Direction  string  `json:"direction"`
	ChangeVs1H float64 `json:"change_vs_1h"`
	ChangeVs4H float64 `json:"change_vs_4h"`
}

func NeutralSentiment(token string) SentimentResult {
	return SentimentResult{Token: token, Direction: DirectionNeutral}
}

// TAResult carries parsed technical levels for one token. CurrentPrice == 0
// marks the whole result unusable for anything price-anchored.
type TAResult struct {
	Token            string    `json:"token"`
	CurrentPrice     float64   `json:"current_price"`
	SupportLevels    []float64 `json:"support_levels"`
	ResistanceLevels []float64 `json:"resistance_levels"`
	RSI              float64   `json:"rsi"`
	Trend            string    `json:"trend"`
	Outlook          string    `json:"outlook"`
	RawResponse      string    `json:"-"` // retained for diagnostics only
}

func EmptyTA(token string) TAResult {
	return TAResult{Token: token, RSI: 50, Trend: "sideways", Outlook: DirectionNeutral}
}

// Usable reports whether the TA carries a price anchor.
func (t TAResult) Usable() bool { return t.CurrentPrice > 0 }
