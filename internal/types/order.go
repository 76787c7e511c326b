package types

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCancelled OrderStatus = "cancelled"
	// No "filled" status: fill detection is not implemented and orders
	// stay pending until cancelled. See the executor package doc.
)

// LimitOrder is one leg of a staggered ladder.
type LimitOrder struct {
	OrderID   string      `json:"order_id"`
	Token     string      `json:"token"`
	Side      OrderSide   `json:"side"`
	Price     float64     `json:"price"`
	USDAmount float64     `json:"usd_amount"`
	CreatedAt string      `json:"created_at"`
	Status    OrderStatus `json:"status"`
}
