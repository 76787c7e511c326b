package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentarb/internal/notifier"
	"sentarb/internal/types"
)

type fakeQuerier struct {
	responses []string
	prompts   []string
}

func (f *fakeQuerier) Query(_ context.Context, _, prompt string) string {
	return f.nextResponse(prompt)
}

func (f *fakeQuerier) QueryQuick(_ context.Context, _, prompt string) string {
	return f.nextResponse(prompt)
}

func (f *fakeQuerier) nextResponse(prompt string) string {
	f.prompts = append(f.prompts, prompt)
	if len(f.responses) == 0 {
		return "Order placed successfully."
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r
}

type fakeLedger struct {
	orders []types.LimitOrder
	trades []types.TradeEvent
	saved  []types.LimitOrder
}

func (f *fakeLedger) LoadOrders() ([]types.LimitOrder, error) { return f.orders, nil }

func (f *fakeLedger) SaveOrders(orders []types.LimitOrder) error {
	f.saved = orders
	return nil
}

func (f *fakeLedger) AppendOrders(placed []types.LimitOrder) error {
	f.orders = append(f.orders, placed...)
	return nil
}

func (f *fakeLedger) AppendTrade(evt types.TradeEvent) error {
	f.trades = append(f.trades, evt)
	return nil
}

func newTestEngine(q *fakeQuerier, l *fakeLedger) *Engine {
	return New(q, l, notifier.LogNotifier{}, false)
}

func TestStaggeredBuySplitsAllocation(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	ta := types.TAResult{Token: "BNKR", CurrentPrice: 0.052, SupportLevels: []float64{0.05, 0.045, 0.04}}
	res, err := e.StaggeredBuy(context.Background(), "BNKR", 100, ta, "bullish spike")
	require.NoError(t, err)
	require.Len(t, res.Placed, 3)

	assert.InDelta(t, 40.0, res.Placed[0].USDAmount, 1e-9)
	assert.InDelta(t, 30.0, res.Placed[1].USDAmount, 1e-9)
	assert.InDelta(t, 30.0, res.Placed[2].USDAmount, 1e-9)
	assert.Equal(t, 0.05, res.Placed[0].Price)
	assert.Equal(t, 0.045, res.Placed[1].Price)
	assert.Equal(t, 0.04, res.Placed[2].Price)
	for _, o := range res.Placed {
		assert.Equal(t, types.SideBuy, o.Side)
		assert.Equal(t, types.OrderPending, o.Status)
	}
	assert.Len(t, l.orders, 3)
	require.Len(t, l.trades, 1)
	assert.Equal(t, "BUY_ORDERS_PLACED", l.trades[0].Action)
}

func TestStaggeredBuyPadsMissingSupports(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	ta := types.TAResult{Token: "BNKR", CurrentPrice: 0.10, SupportLevels: []float64{0.095}}
	res, err := e.StaggeredBuy(context.Background(), "BNKR", 60, ta, "")
	require.NoError(t, err)
	require.Len(t, res.Placed, 3)

	assert.Equal(t, 0.095, res.Placed[0].Price)
	assert.InDelta(t, 0.095, res.Placed[1].Price, 1e-9)
	assert.InDelta(t, 0.090, res.Placed[2].Price, 1e-9)
}

func TestStaggeredBuyFallsBackToPriceLadder(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	ta := types.TAResult{Token: "DEGEN", CurrentPrice: 1.0}
	res, err := e.StaggeredBuy(context.Background(), "DEGEN", 90, ta, "")
	require.NoError(t, err)
	require.Len(t, res.Placed, 3)
	assert.InDelta(t, 0.97, res.Placed[0].Price, 1e-9)
	assert.InDelta(t, 0.94, res.Placed[1].Price, 1e-9)
	assert.InDelta(t, 0.91, res.Placed[2].Price, 1e-9)
}

func TestStaggeredBuyRejectsSmallAllocation(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	_, err := e.StaggeredBuy(context.Background(), "BNKR", 9.99, types.TAResult{CurrentPrice: 1}, "")
	require.Error(t, err)
	assert.Empty(t, l.orders)
	assert.Empty(t, q.prompts)
}

func TestStaggeredBuyNoPriceNoSupports(t *testing.T) {
	e := newTestEngine(&fakeQuerier{}, &fakeLedger{})

	_, err := e.StaggeredBuy(context.Background(), "BNKR", 100, types.TAResult{}, "")
	require.Error(t, err)
}

func TestStaggeredBuySkipsUnconfirmedLegs(t *testing.T) {
	q := &fakeQuerier{responses: []string{
		"Order placed successfully.",
		"Sorry, I could not do that.",
		"Your order has been placed.",
	}}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	ta := types.TAResult{CurrentPrice: 0.05, SupportLevels: []float64{0.05, 0.045, 0.04}}
	res, err := e.StaggeredBuy(context.Background(), "BNKR", 100, ta, "")
	require.NoError(t, err)
	assert.Len(t, res.Placed, 2)
	assert.Len(t, res.Issues, 1)
}

func TestSellBlockedByReserve(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	pos := types.Position{Token: "BNKR", USDCValue: 40}
	ta := types.TAResult{CurrentPrice: 0.05, ResistanceLevels: []float64{0.055, 0.06, 0.065}}
	res, err := e.SellWithReentry(context.Background(), "BNKR", pos, 50, ta, "bearish crash")
	require.Error(t, err)
	assert.Empty(t, res.Placed)
	assert.Empty(t, l.orders)
	assert.Empty(t, q.prompts)
}

func TestSellWithReentryPlacesBothLadders(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	pos := types.Position{Token: "BNKR", USDCValue: 150, EntryPrice: 0.048}
	ta := types.TAResult{
		CurrentPrice:     0.05,
		SupportLevels:    []float64{0.047, 0.044, 0.041},
		ResistanceLevels: []float64{0.055, 0.06, 0.065},
	}
	res, err := e.SellWithReentry(context.Background(), "BNKR", pos, 50, ta, "take profit")
	require.NoError(t, err)

	// 100 sellable: sells of 40/30/30, then half of that re-entered in thirds.
	require.Len(t, res.Placed, 6)
	sells := res.Placed[:3]
	reentries := res.Placed[3:]
	assert.InDelta(t, 40.0, sells[0].USDAmount, 1e-9)
	assert.InDelta(t, 30.0, sells[1].USDAmount, 1e-9)
	assert.InDelta(t, 30.0, sells[2].USDAmount, 1e-9)
	for _, o := range sells {
		assert.Equal(t, types.SideSell, o.Side)
	}
	for _, o := range reentries {
		assert.Equal(t, types.SideBuy, o.Side)
		assert.InDelta(t, 50.0/3.0, o.USDAmount, 1e-6)
	}
	require.Len(t, l.trades, 1)
	assert.Equal(t, "SELL_ORDERS_PLACED", l.trades[0].Action)
}

func TestSellSkipsTinySellable(t *testing.T) {
	e := newTestEngine(&fakeQuerier{}, &fakeLedger{})

	pos := types.Position{Token: "BNKR", USDCValue: 54}
	ta := types.TAResult{CurrentPrice: 0.05, ResistanceLevels: []float64{0.055}}
	_, err := e.SellWithReentry(context.Background(), "BNKR", pos, 50, ta, "")
	require.Error(t, err)
}

func TestSellSkipsReentryBelowMinimum(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	// Sellable 15 means a re-entry budget of 7.50, below the floor.
	pos := types.Position{Token: "BNKR", USDCValue: 65, EntryPrice: 0.05}
	ta := types.TAResult{CurrentPrice: 0.05, ResistanceLevels: []float64{0.055, 0.06, 0.065}}
	res, err := e.SellWithReentry(context.Background(), "BNKR", pos, 50, ta, "")
	require.NoError(t, err)
	assert.Len(t, res.Placed, 3)
	for _, o := range res.Placed {
		assert.Equal(t, types.SideSell, o.Side)
	}
}

func TestCancelPendingSweep(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{orders: []types.LimitOrder{
		{OrderID: "a", Token: "BNKR", Status: types.OrderPending},
		{OrderID: "b", Token: "DEGEN", Status: types.OrderCancelled},
		{OrderID: "c", Token: "DRB", Status: types.OrderPending},
	}}
	e := newTestEngine(q, l)

	n, err := e.CancelPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, l.saved, 3)
	for _, o := range l.saved {
		assert.Equal(t, types.OrderCancelled, o.Status)
	}
	assert.Len(t, q.prompts, 1)
}

func TestCancelPendingNothingToDo(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := newTestEngine(q, l)

	n, err := e.CancelPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, q.prompts)
}

func TestDryRunPlacesNothingRemotely(t *testing.T) {
	q := &fakeQuerier{}
	l := &fakeLedger{}
	e := New(q, l, notifier.LogNotifier{}, true)

	ta := types.TAResult{CurrentPrice: 0.05, SupportLevels: []float64{0.05, 0.045, 0.04}}
	res, err := e.StaggeredBuy(context.Background(), "BNKR", 100, ta, "")
	require.NoError(t, err)
	assert.Len(t, res.Placed, 3)
	assert.Empty(t, q.prompts)
	for _, o := range res.Placed {
		assert.Contains(t, o.OrderID, "dry_")
	}
}
