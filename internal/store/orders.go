package store

import (
	"sentarb/internal/types"
)

// Pending orders are persisted as a flat list; identity is the order_id.
// Orders only ever move pending -> cancelled here. There is no transition to
// filled because fill detection is not implemented anywhere in the system.

func (s *Store) LoadOrders() ([]types.LimitOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []types.LimitOrder
	if err := s.readJSON(ordersFile, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Status == "" {
			orders[i].Status = types.OrderPending
		}
	}
	return orders, nil
}

func (s *Store) SaveOrders(orders []types.LimitOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(ordersFile, orders)
}

// AppendOrders adds newly placed legs to the pending list.
func (s *Store) AppendOrders(placed []types.LimitOrder) error {
	if len(placed) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []types.LimitOrder
	if err := s.readJSON(ordersFile, &orders); err != nil {
		return err
	}
	orders = append(orders, placed...)
	return s.writeJSON(ordersFile, orders)
}
