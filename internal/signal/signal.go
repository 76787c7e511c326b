// Package signal maps one token's sentiment, technicals and current position
// to a trading action. Decide is a pure function; everything it needs comes
// in as arguments and nothing is mutated.
package signal

import (
	"fmt"

	"sentarb/internal/logger"
	"sentarb/internal/types"
)

// Thresholds are the risk and sentiment knobs Decide evaluates against.
type Thresholds struct {
	StopLossPercent   float64
	TakeProfitPercent float64
	BuySpikePercent   float64
}

// Decide applies the rules in priority order; the first match wins.
// Stop-loss and take-profit outrank sentiment because capital preservation
// dominates, and no buy is ever signalled without a price anchor; a spike
// with price 0 would otherwise stage orders at meaningless levels.
func Decide(token string, sentiment types.SentimentResult, ta types.TAResult, position *types.Position, th Thresholds) (types.Action, string) {
	priceAvailable := ta.Usable()

	if position != nil && position.EntryPrice > 0 {
		if priceAvailable {
			changePct := (ta.CurrentPrice - position.EntryPrice) / position.EntryPrice * 100
			if changePct <= -th.StopLossPercent {
				return types.ActionSell, fmt.Sprintf("STOP-LOSS triggered at %.1f%%", changePct)
			}
			if changePct >= th.TakeProfitPercent {
				return types.ActionSell, fmt.Sprintf("TAKE-PROFIT at %.1f%%", changePct)
			}
		} else {
			logger.Warnf("cannot evaluate stop-loss for %s: current price unavailable", token)
		}
	}

	spike := abs(sentiment.ChangeVs1H) >= th.BuySpikePercent

	if spike && sentiment.Direction == types.DirectionBullish && position == nil {
		if priceAvailable {
			return types.ActionBuy, fmt.Sprintf("sentiment spike +%.1f%% (bullish)", sentiment.ChangeVs1H)
		}
		logger.Warnf("skipping BUY for %s: current price unavailable", token)
	}

	if spike && sentiment.Direction == types.DirectionBearish && position != nil {
		return types.ActionSell, fmt.Sprintf("sentiment crash %.1f%% (bearish)", sentiment.ChangeVs1H)
	}

	return types.ActionHold, "no signal"
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
