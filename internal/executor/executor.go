// Package executor turns trade signals into staggered limit-order ladders
// and submits them through the async job gateway.
//
// Orders are tracked as pending from placement until the next cycle's
// cancellation sweep. Nothing here detects fills: a leg that executed at the
// venue is still cancelled and re-placed on the following cycle. Positions
// therefore track the wallet snapshot, not order flow.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sentarb/internal/logger"
	"sentarb/internal/notifier"
	"sentarb/internal/types"
)

const (
	minBuyAllocationUSD = 10.0
	minSellValueUSD     = 5.0
	minReentryUSD       = 10.0
	reentryFraction     = 0.5
)

// Querier submits one prompt and returns the completed response text, empty
// on any failure.
type Querier interface {
	Query(ctx context.Context, kind, prompt string) string
	QueryQuick(ctx context.Context, kind, prompt string) string
}

// Ledger persists orders and trade events between cycles.
type Ledger interface {
	LoadOrders() ([]types.LimitOrder, error)
	SaveOrders(orders []types.LimitOrder) error
	AppendOrders(placed []types.LimitOrder) error
	AppendTrade(evt types.TradeEvent) error
}

// Engine places and cancels ladders for one venue account.
type Engine struct {
	q      Querier
	ledger Ledger
	notify notifier.Notifier
	dryRun bool
	now    func() time.Time
}

func New(q Querier, ledger Ledger, notify notifier.Notifier, dryRun bool) *Engine {
	return &Engine{q: q, ledger: ledger, notify: notify, dryRun: dryRun, now: time.Now}
}

// Result reports what an execution call actually did.
type Result struct {
	Placed []types.LimitOrder
	Issues []string
}

// StaggeredBuy spreads allocation 40/30/30 across three support levels.
func (e *Engine) StaggeredBuy(ctx context.Context, token string, allocationUSD float64, ta types.TAResult, reason string) (Result, error) {
	var res Result
	if allocationUSD < minBuyAllocationUSD {
		return res, fmt.Errorf("buy %s skipped: allocation $%.2f below $%.0f minimum", token, allocationUSD, minBuyAllocationUSD)
	}
	supports, ok := buySupports(ta)
	if !ok {
		return res, fmt.Errorf("buy %s skipped: no support levels and no usable price", token)
	}

	amounts := splitByWeights(allocationUSD, ladderWeights)
	logger.Infof("placing staggered buy for %s: $%.2f across %d levels", token, allocationUSD, len(supports))
	for i, price := range supports {
		order, err := e.placeLeg(ctx, token, types.SideBuy, price, amounts[i])
		if err != nil {
			res.Issues = append(res.Issues, err.Error())
			continue
		}
		res.Placed = append(res.Placed, order)
	}
	if len(res.Placed) == 0 {
		return res, fmt.Errorf("buy %s: no legs accepted", token)
	}
	if err := e.ledger.AppendOrders(res.Placed); err != nil {
		res.Issues = append(res.Issues, fmt.Sprintf("persist buy orders for %s: %v", token, err))
	}
	e.logTrade(token, "BUY_ORDERS_PLACED", reason, map[string]any{
		"allocation_usd": allocationUSD,
		"levels":         supports,
		"orders":         len(res.Placed),
	})
	e.notify.Notify(ctx, notifier.BuyLadderMessage(token, res.Placed, reason))
	return res, nil
}

// SellWithReentry unwinds the sellable part of a position across three
// resistance levels, then stages re-entry buys lower with half the sell
// value. Positions at or below their minimum reserve are never touched.
func (e *Engine) SellWithReentry(ctx context.Context, token string, position types.Position, reserveUSD float64, ta types.TAResult, reason string) (Result, error) {
	var res Result
	if position.USDCValue <= reserveUSD {
		e.notify.Notify(ctx, notifier.SellBlockedMessage(token, position.USDCValue, reserveUSD))
		return res, fmt.Errorf("sell %s blocked: position $%.2f at or below $%.2f reserve", token, position.USDCValue, reserveUSD)
	}
	sellValue := position.USDCValue - reserveUSD
	if sellValue < minSellValueUSD {
		return res, fmt.Errorf("sell %s skipped: sellable $%.2f below $%.0f minimum", token, sellValue, minSellValueUSD)
	}
	resistances, ok := sellResistances(ta)
	if !ok {
		return res, fmt.Errorf("sell %s skipped: no resistance levels and no usable price", token)
	}

	amounts := splitByWeights(sellValue, ladderWeights)
	logger.Infof("placing staggered sell for %s: $%.2f across %d levels (reserve $%.2f kept)", token, sellValue, len(resistances), reserveUSD)
	for i, price := range resistances {
		order, err := e.placeLeg(ctx, token, types.SideSell, price, amounts[i])
		if err != nil {
			res.Issues = append(res.Issues, err.Error())
			continue
		}
		res.Placed = append(res.Placed, order)
	}
	if len(res.Placed) == 0 {
		return res, fmt.Errorf("sell %s: no legs accepted", token)
	}
	if err := e.ledger.AppendOrders(res.Placed); err != nil {
		res.Issues = append(res.Issues, fmt.Sprintf("persist sell orders for %s: %v", token, err))
	}

	reentries := e.stageReentry(ctx, token, sellValue, position.EntryPrice, ta, &res)

	e.logTrade(token, "SELL_ORDERS_PLACED", reason, map[string]any{
		"sell_value_usd": sellValue,
		"reserve_usd":    reserveUSD,
		"levels":         resistances,
		"reentry_orders": len(reentries),
	})
	e.notify.Notify(ctx, notifier.SellLadderMessage(token, res.Placed[:len(res.Placed)-len(reentries)], reentries, reason))
	return res, nil
}

// stageReentry places the buy-back ladder after a sell. Failures here are
// soft: the sell already went out, so re-entry problems only become issues.
func (e *Engine) stageReentry(ctx context.Context, token string, sellValue, entryPrice float64, ta types.TAResult, res *Result) []types.LimitOrder {
	budget := mulPct(sellValue, reentryFraction)
	if budget < minReentryUSD {
		logger.Infof("re-entry for %s skipped: budget $%.2f below $%.0f minimum", token, budget, minReentryUSD)
		return nil
	}
	supports, ok := reentrySupports(ta, entryPrice)
	if !ok {
		res.Issues = append(res.Issues, fmt.Sprintf("re-entry %s skipped: no levels and no anchor price", token))
		return nil
	}
	amounts := evenSplit(budget, len(supports))

	var placed []types.LimitOrder
	for i, price := range supports {
		order, err := e.placeReentryLeg(ctx, token, price, amounts[i])
		if err != nil {
			res.Issues = append(res.Issues, err.Error())
			continue
		}
		placed = append(placed, order)
	}
	if len(placed) == 0 {
		return nil
	}
	if err := e.ledger.AppendOrders(placed); err != nil {
		res.Issues = append(res.Issues, fmt.Sprintf("persist re-entry orders for %s: %v", token, err))
	}
	res.Placed = append(res.Placed, placed...)
	return placed
}

func (e *Engine) placeLeg(ctx context.Context, token string, side types.OrderSide, price, usd float64) (types.LimitOrder, error) {
	prompt := fmt.Sprintf("Place a limit %s order for $%.2f of %s at price $%.6f. Confirm once the order is placed.",
		side, usd, token, price)
	return e.submitLeg(ctx, token, side, price, usd, prompt, []string{"success", "placed", "order"})
}

func (e *Engine) placeReentryLeg(ctx context.Context, token string, price, usd float64) (types.LimitOrder, error) {
	prompt := fmt.Sprintf("Place a limit buy order for $%.2f of %s at price $%.6f to re-enter after the sell. Confirm once the order is placed.",
		usd, token, price)
	return e.submitLeg(ctx, token, types.SideBuy, price, usd, prompt, []string{"success", "placed"})
}

func (e *Engine) submitLeg(ctx context.Context, token string, side types.OrderSide, price, usd float64, prompt string, acceptWords []string) (types.LimitOrder, error) {
	order := types.LimitOrder{
		OrderID:   uuid.NewString(),
		Token:     token,
		Side:      side,
		Price:     price,
		USDAmount: usd,
		CreatedAt: e.now().Format(time.RFC3339),
		Status:    types.OrderPending,
	}
	if e.dryRun {
		order.OrderID = "dry_" + order.OrderID
		logger.Infof("[DRY-RUN] %s %s: $%.2f @ %.6f", side, token, usd, price)
		return order, nil
	}
	response := e.q.QueryQuick(ctx, "order", prompt)
	if !echoesAcceptance(response, acceptWords) {
		return types.LimitOrder{}, fmt.Errorf("%s leg for %s at %.6f not confirmed by venue", side, token, price)
	}
	logger.Infof("placed %s %s: $%.2f @ %.6f (order %s)", side, token, usd, price, order.OrderID)
	return order, nil
}

// echoesAcceptance checks the venue response for any acceptance keyword.
// The venue replies in prose, so this is a keyword sniff, not a protocol.
func echoesAcceptance(response string, words []string) bool {
	if response == "" {
		return false
	}
	lower := strings.ToLower(response)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// CancelPending asks the venue to drop every order still marked pending and
// flips them to cancelled locally. Run at the top of each cycle so stale
// ladders never stack across cycles.
func (e *Engine) CancelPending(ctx context.Context) (int, error) {
	orders, err := e.ledger.LoadOrders()
	if err != nil {
		return 0, fmt.Errorf("load orders: %w", err)
	}
	pending := 0
	for _, o := range orders {
		if o.Status == types.OrderPending {
			pending++
		}
	}
	if pending == 0 {
		return 0, nil
	}
	logger.Infof("cancelling %d pending orders from previous cycles", pending)
	if !e.dryRun {
		e.q.Query(ctx, "cancel", "Cancel all my open limit orders. Confirm once every open order is cancelled.")
	}
	for i := range orders {
		if orders[i].Status == types.OrderPending {
			orders[i].Status = types.OrderCancelled
		}
	}
	if err := e.ledger.SaveOrders(orders); err != nil {
		return pending, fmt.Errorf("persist cancellations: %w", err)
	}
	return pending, nil
}

func (e *Engine) logTrade(token, action, reason string, details map[string]any) {
	evt := types.TradeEvent{
		Timestamp: e.now().Format(time.RFC3339),
		Token:     token,
		Action:    action,
		Reason:    reason,
		Details:   details,
	}
	if err := e.ledger.AppendTrade(evt); err != nil {
		logger.Warnf("trade log append for %s failed: %v", token, err)
	}
}
