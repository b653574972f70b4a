package domain

import "time"

// Trade records one pairing between an aggressor and a resting order.
// The log holding these is append-only: matching never mutates a Trade
// once recorded.
type Trade struct {
	Symbol        string
	AggressorID   int64
	RestingID     int64
	AggressorSide Side
	Price         int64
	Quantity      int64
	Timestamp     time.Time
}

// RestingPrice resolves the price-improvement rule: the trade executes at
// the price of whichever of the two orders established its price priority
// first. Ties (identical timestamp) fall back to the lower order ID, since
// IDs are issued in submission order.
func RestingPrice(bid, ask *Order) int64 {
	if bid.Timestamp.Before(ask.Timestamp) {
		return bid.Price
	}
	if ask.Timestamp.Before(bid.Timestamp) {
		return ask.Price
	}
	if bid.ID < ask.ID {
		return bid.Price
	}
	return ask.Price
}
