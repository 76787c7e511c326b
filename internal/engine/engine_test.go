package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentarb/internal/config"
	"sentarb/internal/executor"
	"sentarb/internal/notifier"
	"sentarb/internal/pkg/lock"
	"sentarb/internal/store"
	"sentarb/internal/types"
)

type scriptedClient struct {
	byKind map[string]string
	calls  []string
}

func (s *scriptedClient) Query(_ context.Context, kind, _ string) string {
	s.calls = append(s.calls, kind)
	return s.byKind[kind]
}

func (s *scriptedClient) QueryQuick(_ context.Context, kind, _ string) string {
	s.calls = append(s.calls, kind)
	if resp, found := s.byKind[kind]; found {
		return resp
	}
	return "Order placed successfully."
}

type recordedCycle struct {
	buys, sells, holds int
	aborted            bool
	errs               []string
}

type fakeCycles struct {
	entries []recordedCycle
}

func (f *fakeCycles) Append(_ time.Time, _ time.Duration, buys, sells, holds, _ int, aborted bool, errs []string) error {
	f.entries = append(f.entries, recordedCycle{buys: buys, sells: sells, holds: holds, aborted: aborted, errs: errs})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Trading: config.TradingConfig{Tokens: []string{"BNKR"}},
		Risk: config.RiskConfig{
			StopLossPercent:    15,
			TakeProfitPercent:  30,
			MaxPositionPercent: 10,
			MaxDailyTrades:     10,
		},
		Sent:     config.SentimentThresholds{BuySpikePercent: 20},
		Reserves: map[string]config.Reserve{"BNKR": {MinUSDValue: 20}},
	}
}

func newTestEngine(t *testing.T, cfg *config.Config, client Querier, cycles CycleRecorder) (*Engine, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(dir)
	require.NoError(t, err)
	exec := executor.New(client, st, notifier.LogNotifier{}, false)
	cl := lock.New(filepath.Join(dir, "sentarb.lock"))
	return New(cfg, client, st, exec, notifier.LogNotifier{}, cycles, cl), st
}

func TestRunCycleBullishSpikeBuys(t *testing.T) {
	client := &scriptedClient{byKind: map[string]string{
		"wallet": "Here are your balances:\nUSDC: $1000.00\nBNKR: $0\n",
		"sentiment": "```json\n" +
			`{"BNKR": {"score": 80, "direction": "bullish", "change_vs_1h": 25.0, "change_vs_4h": 10.0}}` +
			"\n```",
		"technicals": "```json\n" +
			`{"BNKR": {"current_price": 0.052, "support_levels": [0.05, 0.045, 0.04], "resistance_levels": [0.055, 0.06, 0.065], "rsi": 55, "trend": "uptrend"}}` +
			"\n```",
	}}
	cycles := &fakeCycles{}
	e, st := newTestEngine(t, testConfig(), client, cycles)

	sum := e.RunCycle(context.Background())
	assert.False(t, sum.Aborted)
	assert.Equal(t, 1, sum.Buys)
	assert.Equal(t, 0, sum.Sells)
	assert.Empty(t, sum.Errors)

	orders, err := st.LoadOrders()
	require.NoError(t, err)
	require.Len(t, orders, 3)
	// 10% of $1000 split 40/30/30.
	assert.InDelta(t, 40.0, orders[0].USDAmount, 1e-9)
	assert.InDelta(t, 30.0, orders[1].USDAmount, 1e-9)
	assert.InDelta(t, 30.0, orders[2].USDAmount, 1e-9)

	require.Len(t, cycles.entries, 1)
	assert.Equal(t, 1, cycles.entries[0].buys)
}

func TestRunCycleBearishCrashSells(t *testing.T) {
	client := &scriptedClient{byKind: map[string]string{
		"wallet": "USDC: $500.00\nBNKR: $150.00\n",
		"sentiment": "```json\n" +
			`{"BNKR": {"score": -70, "direction": "bearish", "change_vs_1h": -30.0, "change_vs_4h": -12.0}}` +
			"\n```",
		"technicals": "```json\n" +
			`{"BNKR": {"current_price": 0.05, "support_levels": [0.047, 0.044, 0.041], "resistance_levels": [0.055, 0.06, 0.065], "rsi": 35, "trend": "downtrend"}}` +
			"\n```",
	}}
	e, st := newTestEngine(t, testConfig(), client, &fakeCycles{})

	sum := e.RunCycle(context.Background())
	assert.Equal(t, 1, sum.Sells)
	assert.Equal(t, 0, sum.Buys)

	orders, err := st.LoadOrders()
	require.NoError(t, err)
	// 3 sell legs over $130 sellable plus 3 re-entry buys of the $65 budget.
	sells, buys := 0, 0
	for _, o := range orders {
		switch o.Side {
		case types.SideSell:
			sells++
		case types.SideBuy:
			buys++
		}
	}
	assert.Equal(t, 3, sells)
	assert.Equal(t, 3, buys)

	trades, err := st.LoadTrades()
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "SELL_ORDERS_PLACED", trades[0].Action)
}

func TestRunCycleUpstreamFailuresDegradeToHold(t *testing.T) {
	client := &scriptedClient{byKind: map[string]string{}}
	cycles := &fakeCycles{}
	e, st := newTestEngine(t, testConfig(), client, cycles)

	sum := e.RunCycle(context.Background())
	assert.False(t, sum.Aborted)
	assert.Equal(t, 1, sum.Holds)
	assert.NotEmpty(t, sum.Errors)

	orders, err := st.LoadOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
	require.Len(t, cycles.entries, 1)
	assert.Equal(t, 1, cycles.entries[0].holds)
}

func TestRunCycleGarbledWalletKeepsPositions(t *testing.T) {
	client := &scriptedClient{byKind: map[string]string{
		"wallet": "I could not retrieve your balances right now, please retry.",
	}}
	e, st := newTestEngine(t, testConfig(), client, &fakeCycles{})

	require.NoError(t, st.SavePositions(map[string]types.Position{
		"BNKR": {Token: "BNKR", USDCValue: 150, EntryPrice: 0.05},
	}))

	sum := e.RunCycle(context.Background())
	assert.NotEmpty(t, sum.Errors)

	positions, err := st.LoadPositions()
	require.NoError(t, err)
	assert.Equal(t, 150.0, positions["BNKR"].USDCValue)
}

func TestRunCycleDailyCapAbortsButReports(t *testing.T) {
	cfg := testConfig()
	cfg.Risk.MaxDailyTrades = 1
	client := &scriptedClient{byKind: map[string]string{
		"wallet": "USDC: $1000.00\nBNKR: $0\n",
	}}
	cycles := &fakeCycles{}
	e, st := newTestEngine(t, cfg, client, cycles)

	require.NoError(t, st.AppendTrade(types.TradeEvent{Token: "BNKR", Action: "SELL_ORDERS_PLACED"}))

	sum := e.RunCycle(context.Background())
	assert.True(t, sum.Aborted)
	assert.Equal(t, 0, sum.Buys)
	assert.NotContains(t, client.calls, "sentiment")
	require.Len(t, cycles.entries, 1)

	// The aborted cycle must still have released its lock.
	sum2 := e.RunCycle(context.Background())
	assert.True(t, sum2.Aborted)
	for _, msg := range sum2.Errors {
		assert.NotContains(t, msg, "lock")
	}
}

func TestRunCycleHeldLockAborts(t *testing.T) {
	dir := t.TempDir()
	st, err := store.New(dir)
	require.NoError(t, err)
	client := &scriptedClient{byKind: map[string]string{}}
	exec := executor.New(client, st, notifier.LogNotifier{}, false)

	lockPath := filepath.Join(dir, "sentarb.lock")
	other := lock.New(lockPath)
	require.NoError(t, other.Acquire())
	defer other.Release()

	e := New(testConfig(), client, st, exec, notifier.LogNotifier{}, nil, lock.New(lockPath))
	sum := e.RunCycle(context.Background())
	assert.True(t, sum.Aborted)
	require.NotEmpty(t, sum.Errors)
	assert.Contains(t, sum.Errors[0], "lock")
	assert.Empty(t, client.calls)
}

func TestRunCycleNeutralSentimentHolds(t *testing.T) {
	client := &scriptedClient{byKind: map[string]string{
		"wallet":     "USDC: $1000.00\nBNKR: $0\n",
		"sentiment":  "Nothing notable happening for BNKR today.",
		"technicals": "BNKR current price: $0.05, RSI 50, sideways.",
	}}
	e, st := newTestEngine(t, testConfig(), client, &fakeCycles{})

	sum := e.RunCycle(context.Background())
	assert.Equal(t, 1, sum.Holds)
	orders, err := st.LoadOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}
