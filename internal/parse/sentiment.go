package parse

import (
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"

	"sentarb/internal/pkg/convert"
	"sentarb/internal/pkg/jsonutil"
	"sentarb/internal/types"
)

var (
	scorePattern   = regexp.MustCompile(`(?i)score[=:\s]+([+-]?\d+(?:\.\d+)?)`)
	percentPattern = regexp.MustCompile(`([+-]?\d+(?:\.\d+)?)\s*%`)
)

type SentimentParse struct {
	Results map[string]types.SentimentResult
	Issues  []string
}

// ParseSentiment extracts per-token sentiment from a batched response. A
// structured JSON block wins when present; otherwise each token's section is
// parsed field by field. Missing fields keep neutral defaults, and a
// direction keyword without a numeric score infers a score of +/-50 so the
// spike rules still have a magnitude to work with.
func ParseSentiment(response string, tokens []string) SentimentParse {
	out := SentimentParse{Results: make(map[string]types.SentimentResult, len(tokens))}
	var structured gjson.Result
	if obj, ok := jsonutil.ExtractObject(response); ok {
		structured = gjson.Parse(obj)
	}
	for _, token := range tokens {
		r := types.NeutralSentiment(token)
		if node := structured.Get(token); node.IsObject() {
			fillSentimentFromJSON(&r, node)
		} else if section, ok := sectionFor(response, token, tokens); ok {
			fillSentimentFromText(&r, section)
		} else {
			out.Issues = append(out.Issues, fmt.Sprintf("sentiment: no section for %s", token))
		}
		out.Results[token] = r
	}
	return out
}

func fillSentimentFromJSON(r *types.SentimentResult, node gjson.Result) {
	r.Score = convert.ToFloat(node.Get("score").Value(), 0)
	switch dir := node.Get("direction").String(); dir {
	case types.DirectionBullish, types.DirectionBearish:
		r.Direction = dir
	}
	r.ChangeVs1H = convert.ToFloat(node.Get("change_vs_1h").Value(), 0)
	r.ChangeVs4H = convert.ToFloat(node.Get("change_vs_4h").Value(), 0)
	inferScore(r)
}

func fillSentimentFromText(r *types.SentimentResult, section string) {
	if m := scorePattern.FindStringSubmatch(section); m != nil {
		r.Score = convert.ToFloat(m[1], 0)
	}
	if containsFold(section, types.DirectionBullish) {
		r.Direction = types.DirectionBullish
	} else if containsFold(section, types.DirectionBearish) {
		r.Direction = types.DirectionBearish
	}
	changes := percentPattern.FindAllStringSubmatch(section, 2)
	if len(changes) >= 1 {
		r.ChangeVs1H = convert.ToFloat(changes[0][1], 0)
	}
	if len(changes) >= 2 {
		r.ChangeVs4H = convert.ToFloat(changes[1][1], 0)
	}
	inferScore(r)
}

// inferScore backfills the numeric score when only a direction keyword was
// recognizable.
func inferScore(r *types.SentimentResult) {
	if r.Score != 0 {
		return
	}
	switch r.Direction {
	case types.DirectionBullish:
		r.Score = 50
	case types.DirectionBearish:
		r.Score = -50
	}
}
