// Package engine runs the trading cycle: cancel stale ladders, read the
// wallet, reconcile positions, score sentiment against technicals per token,
// and hand resulting signals to the executor.
package engine

import (
	"context"
	"fmt"
	"time"

	"sentarb/internal/config"
	"sentarb/internal/executor"
	"sentarb/internal/logger"
	"sentarb/internal/notifier"
	"sentarb/internal/parse"
	"sentarb/internal/pkg/lock"
	"sentarb/internal/signal"
	"sentarb/internal/store"
	"sentarb/internal/types"
)

// Querier is the slice of the gateway client the engine needs.
type Querier interface {
	Query(ctx context.Context, kind, prompt string) string
	QueryQuick(ctx context.Context, kind, prompt string) string
}

// CycleRecorder persists cycle summaries. Optional.
type CycleRecorder interface {
	Append(startedAt time.Time, duration time.Duration, buys, sells, holds, tokens int, aborted bool, errs []string) error
}

// Engine owns one trading loop over a fixed token set.
type Engine struct {
	cfg    *config.Config
	client Querier
	store  *store.Store
	exec   *executor.Engine
	notify notifier.Notifier
	cycles CycleRecorder
	lock   *lock.CycleLock
	now    func() time.Time
}

func New(cfg *config.Config, client Querier, st *store.Store, exec *executor.Engine, notify notifier.Notifier, cycles CycleRecorder, cl *lock.CycleLock) *Engine {
	return &Engine{
		cfg:    cfg,
		client: client,
		store:  st,
		exec:   exec,
		notify: notify,
		cycles: cycles,
		lock:   cl,
		now:    time.Now,
	}
}

// Summary is the outcome of one cycle.
type Summary struct {
	StartedAt time.Time
	Duration  time.Duration
	Buys      int
	Sells     int
	Holds     int
	Aborted   bool
	Errors    []string
}

// RunCycle executes one full pass. It never returns an error: everything
// that goes wrong lands in the summary's error list, and a cycle that
// cannot trade still reports and releases its lock. Even a fault escaping
// the cycle body is caught here, after the lock defer has fired.
func (e *Engine) RunCycle(ctx context.Context) (out Summary) {
	started := e.now()
	errs := &ErrorList{}
	sum := Summary{StartedAt: started}

	defer func() {
		if r := recover(); r != nil {
			errs.Addf("cycle fault: %v", r)
			sum.Aborted = true
			out = e.finish(ctx, sum, errs)
		}
	}()

	logger.InfoBlock("cycle start")
	if err := e.lock.Acquire(); err != nil {
		errs.Addf("lock: %v", err)
		sum.Aborted = true
		return e.finish(ctx, sum, errs)
	}
	defer func() {
		if err := e.lock.Release(); err != nil {
			logger.Warnf("lock release: %v", err)
		}
	}()

	if n, err := e.exec.CancelPending(ctx); err != nil {
		errs.Addf("cancel sweep: %v", err)
	} else if n > 0 {
		logger.Infof("cancelled %d stale orders", n)
	}

	positions, usdc := e.readWallet(ctx, errs)

	if capped, err := e.dailyCapReached(); err != nil {
		errs.Addf("trade log: %v", err)
	} else if capped {
		logger.Warnf("daily trade cap of %d reached, skipping trading this cycle", e.cfg.Risk.MaxDailyTrades)
		errs.Addf("daily trade cap of %d reached", e.cfg.Risk.MaxDailyTrades)
		sum.Aborted = true
		return e.finish(ctx, sum, errs)
	}

	tokens := e.cfg.Trading.Tokens
	sentiments := e.readSentiment(ctx, tokens, errs)
	technicals := e.readTechnicals(ctx, tokens, errs)

	th := signal.Thresholds{
		StopLossPercent:   e.cfg.Risk.StopLossPercent,
		TakeProfitPercent: e.cfg.Risk.TakeProfitPercent,
		BuySpikePercent:   e.cfg.Sent.BuySpikePercent,
	}
	allocation := usdc * e.cfg.Risk.MaxPositionPercent / 100

	for _, token := range tokens {
		action := e.runToken(ctx, token, positions, sentiments[token], technicals[token], th, allocation, errs)
		switch action {
		case types.ActionBuy:
			sum.Buys++
		case types.ActionSell:
			sum.Sells++
		default:
			sum.Holds++
		}
	}
	return e.finish(ctx, sum, errs)
}

// runToken decides and executes for one token. A panic in any per-token
// step is contained here so one bad token cannot take down the cycle.
func (e *Engine) runToken(ctx context.Context, token string, positions map[string]types.Position, sent types.SentimentResult, ta types.TAResult, th signal.Thresholds, allocation float64, errs *ErrorList) (action types.Action) {
	action = types.ActionHold
	defer func() {
		if r := recover(); r != nil {
			errs.Addf("%s: recovered from fault: %v", token, r)
			action = types.ActionHold
		}
	}()

	var position *types.Position
	if p, held := positions[token]; held {
		position = &p
	}
	decided, reason := signal.Decide(token, sent, ta, position, th)
	logger.Infof("%s: %s (%s)", token, decided, reason)

	switch decided {
	case types.ActionBuy:
		if _, err := e.exec.StaggeredBuy(ctx, token, allocation, ta, reason); err != nil {
			errs.Addf("%v", err)
			return types.ActionHold
		}
		return types.ActionBuy
	case types.ActionSell:
		res, err := e.exec.SellWithReentry(ctx, token, *position, e.cfg.MinReserve(token), ta, reason)
		errs.Extend(token, res.Issues)
		if err != nil {
			errs.Addf("%v", err)
			return types.ActionHold
		}
		return types.ActionSell
	default:
		return types.ActionHold
	}
}

// readWallet queries balances, reconciles stored positions against whatever
// could be read, and returns the free USDC. Failures degrade instead of
// aborting: unreadable tokens are left out of the sync truth so stored
// positions keep their last known values, and a failed query means zero
// free USDC, which rules out new buys this cycle.
func (e *Engine) readWallet(ctx context.Context, errs *ErrorList) (map[string]types.Position, float64) {
	truth := map[string]float64{}
	usdc := 0.0
	resp := e.client.Query(ctx, "wallet", walletPrompt(e.cfg.Trading.Tokens))
	if resp == "" {
		errs.Addf("wallet: balance query returned nothing, keeping stored positions")
	} else {
		parsed := parse.ParseWallet(resp, append([]string{"USDC"}, e.cfg.Trading.Tokens...))
		errs.Extend("wallet", parsed.Issues)
		if parsed.Resolved["USDC"] {
			usdc = parsed.Balances["USDC"]
		}
		for _, token := range e.cfg.Trading.Tokens {
			if parsed.Resolved[token] {
				truth[token] = parsed.Balances[token]
			}
		}
	}
	positions, err := e.store.SyncWithWallet(truth)
	if err != nil {
		errs.Addf("position sync: %v", err)
		positions, err = e.store.LoadPositions()
		if err != nil {
			errs.Addf("load positions: %v", err)
			positions = map[string]types.Position{}
		}
	}
	logger.Infof("wallet: $%.2f USDC free, %d open positions", usdc, len(positions))
	return positions, usdc
}

func (e *Engine) readSentiment(ctx context.Context, tokens []string, errs *ErrorList) map[string]types.SentimentResult {
	resp := e.client.Query(ctx, "sentiment", sentimentPrompt(tokens))
	if resp == "" {
		errs.Addf("sentiment: query returned nothing, treating all tokens as neutral")
		out := make(map[string]types.SentimentResult, len(tokens))
		for _, t := range tokens {
			out[t] = types.NeutralSentiment(t)
		}
		return out
	}
	parsed := parse.ParseSentiment(resp, tokens)
	errs.Extend("sentiment", parsed.Issues)
	return parsed.Results
}

func (e *Engine) readTechnicals(ctx context.Context, tokens []string, errs *ErrorList) map[string]types.TAResult {
	resp := e.client.Query(ctx, "technicals", taPrompt(tokens))
	if resp == "" {
		errs.Addf("technicals: query returned nothing, trading signals limited to sells")
		out := make(map[string]types.TAResult, len(tokens))
		for _, t := range tokens {
			out[t] = types.EmptyTA(t)
		}
		return out
	}
	parsed := parse.ParseTA(resp, tokens)
	errs.Extend("technicals", parsed.Issues)
	return parsed.Results
}

func (e *Engine) dailyCapReached() (bool, error) {
	if e.cfg.Risk.MaxDailyTrades <= 0 {
		return false, nil
	}
	count, err := e.store.TradesOn(e.now())
	if err != nil {
		return false, err
	}
	return count >= e.cfg.Risk.MaxDailyTrades, nil
}

// finish stamps the summary, reports it and records it.
func (e *Engine) finish(ctx context.Context, sum Summary, errs *ErrorList) Summary {
	sum.Duration = e.now().Sub(sum.StartedAt)
	sum.Errors = errs.Items()

	status := "ok"
	if sum.Aborted {
		status = "aborted"
	}
	logger.InfoBlock(fmt.Sprintf("cycle done (%s): %d buy / %d sell / %d hold, %d errors in %s",
		status, sum.Buys, sum.Sells, sum.Holds, errs.Len(), sum.Duration.Round(time.Millisecond)))
	for _, err := range sum.Errors {
		logger.Warnf("cycle error: %s", err)
	}

	e.notify.Notify(ctx, notifier.CycleDigest(sum.StartedAt, sum.Duration, sum.Buys, sum.Sells, sum.Holds, sum.Aborted, sum.Errors))
	if e.cycles != nil {
		if err := e.cycles.Append(sum.StartedAt, sum.Duration, sum.Buys, sum.Sells, sum.Holds, len(e.cfg.Trading.Tokens), sum.Aborted, sum.Errors); err != nil {
			logger.Warnf("cycle log append: %v", err)
		}
	}
	return sum
}
