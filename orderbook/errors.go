package orderbook

import "errors"

// Sentinel errors returned by OrderBook's public operations. Callers should
// compare with errors.Is; none of these wrap further detail because the
// operation either fully applied or made no state change.
var (
	// ErrInvalidQuantity is returned when an order's quantity is <= 0.
	ErrInvalidQuantity = errors.New("orderbook: quantity must be positive")
	// ErrInvalidPrice is returned when an order's price is <= 0.
	ErrInvalidPrice = errors.New("orderbook: price must be positive")
	// ErrInvalidSide is returned when an order's side is neither BUY nor SELL.
	ErrInvalidSide = errors.New("orderbook: side must be BUY or SELL")
	// ErrUnsupportedOrderType is returned for any order type other than LIMIT.
	ErrUnsupportedOrderType = errors.New("orderbook: only LIMIT orders are supported")
	// ErrDuplicateOrderID is returned when submitting an order_id already present in the book.
	ErrDuplicateOrderID = errors.New("orderbook: duplicate order id")
	// ErrOrderNotFound is returned by Cancel when order_id is unknown.
	ErrOrderNotFound = errors.New("orderbook: order not found")
)
