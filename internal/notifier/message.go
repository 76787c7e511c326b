package notifier

import (
	"fmt"
	"strings"
	"time"

	"sentarb/internal/types"
)

// Message rendering for the chat channel. Keep these plain: Markdown bold
// on the headline only, one line per order leg.

func BuyLadderMessage(token string, orders []types.LimitOrder, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*BUY ladder placed: %s*\n", token)
	if reason != "" {
		fmt.Fprintf(&b, "reason: %s\n", reason)
	}
	for _, o := range orders {
		fmt.Fprintf(&b, "  $%.2f @ %.6f\n", o.USDAmount, o.Price)
	}
	return b.String()
}

func SellLadderMessage(token string, sells, reentries []types.LimitOrder, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*SELL ladder placed: %s*\n", token)
	if reason != "" {
		fmt.Fprintf(&b, "reason: %s\n", reason)
	}
	for _, o := range sells {
		fmt.Fprintf(&b, "  sell $%.2f @ %.6f\n", o.USDAmount, o.Price)
	}
	if len(reentries) > 0 {
		b.WriteString("re-entry buys:\n")
		for _, o := range reentries {
			fmt.Fprintf(&b, "  buy $%.2f @ %.6f\n", o.USDAmount, o.Price)
		}
	}
	return b.String()
}

func SellBlockedMessage(token string, positionUSD, reserveUSD float64) string {
	return fmt.Sprintf("*SELL blocked: %s*\nposition $%.2f is at or below the $%.2f minimum reserve",
		token, positionUSD, reserveUSD)
}

// CycleDigest summarizes one completed cycle. At most five errors are
// listed; the rest are rolled into a count.
func CycleDigest(startedAt time.Time, duration time.Duration, buys, sells, holds int, aborted bool, errs []string) string {
	var b strings.Builder
	b.WriteString("*Cycle report*\n")
	fmt.Fprintf(&b, "started: %s\n", startedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "duration: %s\n", duration.Round(time.Second))
	if aborted {
		b.WriteString("status: aborted\n")
	}
	fmt.Fprintf(&b, "actions: %d buy / %d sell / %d hold\n", buys, sells, holds)
	if len(errs) > 0 {
		fmt.Fprintf(&b, "errors (%d):\n", len(errs))
		shown := errs
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, e := range shown {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
		if extra := len(errs) - len(shown); extra > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", extra)
		}
	}
	return b.String()
}
