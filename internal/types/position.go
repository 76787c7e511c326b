package types

import "time"

// Position tracks a holding in USD terms only; token amounts are never
// stored. EntryPrice stays 0 when the position was discovered from wallet
// truth rather than opened by this system.
type Position struct {
	Token           string  `json:"token"`
	USDCValue       float64 `json:"usdc_value"`
	EntryPrice      float64 `json:"entry_price"`
	EntryTime       string  `json:"entry_time"`
	StopLossPrice   float64 `json:"stop_loss_price,omitempty"`
	TakeProfitPrice float64 `json:"take_profit_price,omitempty"`
}

// MinPositionUSD is the dust threshold: wallet values below it mean the
// position is absent and must not be persisted as a residue.
const MinPositionUSD = 1.0

func NewPosition(token string, usdValue float64) Position {
	return Position{
		Token:     token,
		USDCValue: usdValue,
		EntryTime: time.Now().Format(time.RFC3339),
	}
}

// TradeEvent is one append-only trade-log entry. Extra detail lands in
// Details so older readers keep working when fields are added.
type TradeEvent struct {
	Timestamp string         `json:"timestamp"`
	Token     string         `json:"token"`
	Action    string         `json:"action"`
	Reason    string         `json:"reason,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}
