package store

import (
	"time"

	"sentarb/internal/types"
)

// The trade log is append-only; it feeds the daily trade cap and nothing
// else reads it on the hot path.

func (s *Store) LoadTrades() ([]types.TradeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var trades []types.TradeEvent
	if err := s.readJSON(tradesFile, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (s *Store) AppendTrade(evt types.TradeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var trades []types.TradeEvent
	if err := s.readJSON(tradesFile, &trades); err != nil {
		return err
	}
	if evt.Timestamp == "" {
		evt.Timestamp = time.Now().Format(time.RFC3339)
	}
	trades = append(trades, evt)
	return s.writeJSON(tradesFile, trades)
}

// TradesOn counts trade-log entries stamped on the given calendar day
// (local time). Unparseable timestamps are skipped rather than counted.
func (s *Store) TradesOn(day time.Time) (int, error) {
	trades, err := s.LoadTrades()
	if err != nil {
		return 0, err
	}
	y, m, d := day.Date()
	count := 0
	for _, t := range trades {
		ts, err := time.Parse(time.RFC3339, t.Timestamp)
		if err != nil {
			continue
		}
		ty, tm, td := ts.Local().Date()
		if ty == y && tm == m && td == d {
			count++
		}
	}
	return count, nil
}
