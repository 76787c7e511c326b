package executor

import (
	"github.com/shopspring/decimal"

	"sentarb/internal/types"
)

// Ladder geometry. All synthetic-level and allocation math runs through
// decimal so repeated percentage steps don't accumulate float error across
// a ladder.

var ladderWeights = []float64{0.40, 0.30, 0.30}

func mulPct(base float64, factor float64) float64 {
	f, _ := decimal.NewFromFloat(base).Mul(decimal.NewFromFloat(factor)).Float64()
	return f
}

// splitByWeights carves total into one amount per weight.
func splitByWeights(total float64, weights []float64) []float64 {
	t := decimal.NewFromFloat(total)
	out := make([]float64, len(weights))
	for i, w := range weights {
		v, _ := t.Mul(decimal.NewFromFloat(w)).Float64()
		out[i] = v
	}
	return out
}

// evenSplit divides total into n equal parts.
func evenSplit(total float64, n int) []float64 {
	per, _ := decimal.NewFromFloat(total).Div(decimal.NewFromInt(int64(n))).Float64()
	out := make([]float64, n)
	for i := range out {
		out[i] = per
	}
	return out
}

// buySupports returns exactly 3 buy levels. Known TA supports are used as-is
// (closest to price first); missing slots are synthesized 5% then 10% below
// the anchor. With no supports at all the ladder hangs 3%/6%/9% off the
// current price, which must then be known.
func buySupports(ta types.TAResult) ([]float64, bool) {
	if len(ta.SupportLevels) > 0 {
		supports := capLevels(ta.SupportLevels)
		anchor := ta.CurrentPrice
		if anchor <= 0 {
			anchor = mulPct(supports[0], 1.05)
		}
		for len(supports) < 3 {
			supports = append(supports, mulPct(anchor, 0.95-0.05*float64(len(supports)-1)))
		}
		return supports, true
	}
	if ta.CurrentPrice <= 0 {
		return nil, false
	}
	return []float64{
		mulPct(ta.CurrentPrice, 0.97),
		mulPct(ta.CurrentPrice, 0.94),
		mulPct(ta.CurrentPrice, 0.91),
	}, true
}

// sellResistances mirrors buySupports above the price: synthesized legs sit
// 5% then 10% above the anchor, or 3%/6%/9% above price when TA gave
// nothing.
func sellResistances(ta types.TAResult) ([]float64, bool) {
	if len(ta.ResistanceLevels) > 0 {
		resistances := capLevels(ta.ResistanceLevels)
		anchor := ta.CurrentPrice
		if anchor <= 0 {
			anchor = mulPct(resistances[0], 0.95)
		}
		for len(resistances) < 3 {
			resistances = append(resistances, mulPct(anchor, 1.05+0.05*float64(len(resistances)-1)))
		}
		return resistances, true
	}
	if ta.CurrentPrice <= 0 {
		return nil, false
	}
	return []float64{
		mulPct(ta.CurrentPrice, 1.03),
		mulPct(ta.CurrentPrice, 1.06),
		mulPct(ta.CurrentPrice, 1.09),
	}, true
}

// reentrySupports picks the buy-back levels staged after a sell: TA supports
// when present (padded below the anchor), else a flat -5/-10/-15% ladder.
// The position entry price anchors the ladder when the current price is
// unknown.
func reentrySupports(ta types.TAResult, entryPrice float64) ([]float64, bool) {
	anchor := ta.CurrentPrice
	if anchor <= 0 {
		anchor = entryPrice
	}
	if len(ta.SupportLevels) > 0 {
		supports := capLevels(ta.SupportLevels)
		for len(supports) < 3 && anchor > 0 {
			supports = append(supports, mulPct(anchor, 0.95-0.05*float64(len(supports))))
		}
		return supports, true
	}
	if anchor <= 0 {
		return nil, false
	}
	return []float64{
		mulPct(anchor, 0.95),
		mulPct(anchor, 0.90),
		mulPct(anchor, 0.85),
	}, true
}

func capLevels(levels []float64) []float64 {
	if len(levels) > 3 {
		levels = levels[:3]
	}
	return append([]float64(nil), levels...)
}
