package store

import (
	"time"

	"sentarb/internal/logger"
	"sentarb/internal/pkg/convert"
	"sentarb/internal/types"
)

// Positions are stored as a map keyed by token. Loading tolerates documents
// written by earlier schema versions: the deprecated "stop_loss" /
// "take_profit" trigger fields map onto the current *_price names, and the
// long-gone token-amount field is ignored entirely.

func (s *Store) LoadPositions() (map[string]types.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPositionsLocked()
}

func (s *Store) loadPositionsLocked() (map[string]types.Position, error) {
	var raw map[string]map[string]any
	if err := s.readJSON(positionsFile, &raw); err != nil {
		return nil, err
	}
	positions := make(map[string]types.Position, len(raw))
	for token, v := range raw {
		p := types.Position{
			Token:      stringField(v, "token", token),
			USDCValue:  convert.ToFloat(v["usdc_value"], 0),
			EntryPrice: convert.ToFloat(v["entry_price"], 0),
			EntryTime:  stringField(v, "entry_time", time.Now().Format(time.RFC3339)),
		}
		p.StopLossPrice = convert.ToFloat(v["stop_loss_price"], convert.ToFloat(v["stop_loss"], 0))
		p.TakeProfitPrice = convert.ToFloat(v["take_profit_price"], convert.ToFloat(v["take_profit"], 0))
		positions[token] = p
	}
	return positions, nil
}

func stringField(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

func (s *Store) SavePositions(positions map[string]types.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(positionsFile, positions)
}

// SyncWithWallet reconciles stored positions against externally reported
// ground truth and persists the result. Truth below the dust threshold
// removes the position; known positions get their value updated in place
// (entry price untouched); unknown holdings become new positions with entry
// price 0. This is the only path that writes wallet truth into position
// state.
func (s *Store) SyncWithWallet(truth map[string]float64) (map[string]types.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.loadPositionsLocked()
	if err != nil {
		return nil, err
	}
	for token, actual := range truth {
		tracked, exists := positions[token]
		switch {
		case actual < types.MinPositionUSD:
			if exists {
				logger.Infof("dropping %s position, wallet shows $%.2f", token, actual)
				delete(positions, token)
			}
		case exists:
			if diff := tracked.USDCValue - actual; diff > 1 || diff < -1 {
				logger.Infof("updating %s: $%.2f -> $%.2f", token, tracked.USDCValue, actual)
			}
			tracked.USDCValue = actual
			positions[token] = tracked
		default:
			logger.Infof("new position %s: $%.2f (entry price unknown)", token, actual)
			positions[token] = types.NewPosition(token, actual)
		}
	}
	if err := s.writeJSON(positionsFile, positions); err != nil {
		return nil, err
	}
	return positions, nil
}
