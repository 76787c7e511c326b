package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentarb/internal/types"
)

const taJSONResponse = "Here is the requested analysis.\n```json\n" + `{
  "BNKR": {
    "current_price": 0.000357,
    "support_levels": [0.00035, 0.00028, "0.00022"],
    "resistance_levels": [0.00046, 0.00058],
    "rsi": 55,
    "trend": "bullish pullback"
  },
  "DEGEN": {
    "current_price": "0.045",
    "support_levels": [0.042, 0.038],
    "resistance_levels": [0.048, 0.052],
    "rsi": 48,
    "trend": "sideways"
  }
}` + "\n```\nFree-form thoughts follow; DEGEN looks extremely bearish here.\n"

func TestParseTAStructuredBlockIgnoresProse(t *testing.T) {
	res := ParseTA(taJSONResponse, []string{"BNKR", "DEGEN"})

	bnkr := res.Results["BNKR"]
	assert.Equal(t, 0.000357, bnkr.CurrentPrice)
	assert.Equal(t, []float64{0.00035, 0.00028, 0.00022}, bnkr.SupportLevels)
	assert.Equal(t, []float64{0.00046, 0.00058}, bnkr.ResistanceLevels)
	assert.Equal(t, 55.0, bnkr.RSI)
	assert.Equal(t, types.DirectionBullish, bnkr.Outlook)

	// The prose "bearish" must not override the structured sideways trend.
	degen := res.Results["DEGEN"]
	assert.Equal(t, 0.045, degen.CurrentPrice)
	assert.Equal(t, types.DirectionNeutral, degen.Outlook)
	assert.Empty(t, res.Issues)
}

func TestParseTARegexFallback(t *testing.T) {
	response := `BNKR analysis:
Current price: $0.00036
Support levels: $0.00034, $0.00030, $0.00025
Resistance levels: $0.00042, $0.00050
RSI: 61
The token is in an uptrend and looks bullish short term.

DRB analysis:
Current price: $0.000012
RSI: 40
Downtrend continues, bearish outlook.`
	res := ParseTA(response, []string{"BNKR", "DRB"})

	bnkr := res.Results["BNKR"]
	assert.Equal(t, 0.00036, bnkr.CurrentPrice)
	assert.Equal(t, []float64{0.00034, 0.0003, 0.00025}, bnkr.SupportLevels)
	assert.Equal(t, []float64{0.00042, 0.0005}, bnkr.ResistanceLevels)
	assert.Equal(t, 61.0, bnkr.RSI)
	assert.Equal(t, types.DirectionBullish, bnkr.Outlook)

	drb := res.Results["DRB"]
	assert.Equal(t, 0.000012, drb.CurrentPrice)
	assert.Empty(t, drb.SupportLevels)
	assert.Equal(t, types.DirectionBearish, drb.Outlook)
}

func TestParseTAMalformedBlockFallsBackWithIssue(t *testing.T) {
	response := "```json\n{\"BNKR\": \"not an object\"}\n```\nBNKR price: $0.5, RSI: 50"
	res := ParseTA(response, []string{"BNKR"})
	require.NotEmpty(t, res.Issues)
	assert.Contains(t, res.Issues[0], "rejected")
	assert.Equal(t, 0.5, res.Results["BNKR"].CurrentPrice)
}

func TestParseTAUnusableDefaults(t *testing.T) {
	res := ParseTA("nothing about these tokens", []string{"BNKR"})
	r := res.Results["BNKR"]
	assert.False(t, r.Usable())
	assert.Equal(t, 50.0, r.RSI)
	assert.Equal(t, types.DirectionNeutral, r.Outlook)
	assert.NotEmpty(t, res.Issues)
}
