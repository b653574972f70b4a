package orderbook

import (
	"sync"
	"time"

	"matchbook/domain"
	"matchbook/feed"
)

// Snapshot is a consistent, point-in-time projection of a book: bids
// descending, asks ascending, plus the last traded price.
type Snapshot struct {
	Bids []PriceLevelView
	Asks []PriceLevelView
	LTP  *int64
}

// OrderBook is a single security's price-time-priority book: two
// PriceIndexes, an order-id index for O(1) cancel, an append-only trade
// log, the last traded price, and the mutex that serializes every public
// operation. There are no nested locks and no cross-book locks; matching
// runs entirely inside the caller's critical section.
type OrderBook struct {
	mu sync.Mutex

	symbol string
	bids   *PriceIndex // descending: best bid first
	asks   *PriceIndex // ascending: best ask first
	orders map[int64]*domain.Order
	trades []domain.Trade
	ltp    *int64

	tradeFeed *feed.RingBuffer[domain.Trade]
}

// NewOrderBook creates an empty book for symbol.
func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		bids:   NewPriceIndex(true),
		asks:   NewPriceIndex(false),
		orders: make(map[int64]*domain.Order),
	}
}

// Symbol returns the security this book serves.
func (b *OrderBook) Symbol() string {
	return b.symbol
}

// SetTradeFeed attaches a ring buffer that every executed trade is
// published to, in addition to the in-memory trade log. Publication is
// non-blocking (TryPublish): a saturated feed drops events rather than
// stalling the matcher, since this call happens under the book's lock.
func (b *OrderBook) SetTradeFeed(f *feed.RingBuffer[domain.Trade]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradeFeed = f
}

// Submit validates, inserts, and matches order under the book's lock. The
// order's Residual on return reflects how much of it still rests (0 means
// it fully matched against existing liquidity).
func (b *OrderBook) Submit(order *domain.Order) error {
	if order.Quantity <= 0 || order.Residual <= 0 {
		return ErrInvalidQuantity
	}
	if order.Price <= 0 {
		return ErrInvalidPrice
	}
	if order.Side != domain.SideBuy && order.Side != domain.SideSell {
		return ErrInvalidSide
	}
	if order.Type != domain.OrderTypeLimit {
		return ErrUnsupportedOrderType
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.orders[order.ID]; exists {
		return ErrDuplicateOrderID
	}

	index := b.sideIndex(order.Side)
	index.GetOrCreate(order.Price).Enqueue(order)
	b.orders[order.ID] = order

	b.matchAll()
	b.recordMetricsLocked()
	return nil
}

// Cancel unlinks order_id from its level and the id index. Returns
// ErrOrderNotFound (idempotently) if order_id is unknown or already
// removed — including by a full fill.
func (b *OrderBook) Cancel(orderID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}

	index := b.sideIndex(order.Side)
	level, ok := index.Find(order.Price)
	if !ok {
		// Invariant violation: the id index disagrees with the price index.
		panic("orderbook: order present in id index but its price level is missing")
	}
	level.Unlink(order)
	if level.IsEmpty() {
		index.Remove(order.Price)
	}
	delete(b.orders, orderID)

	b.recordMetricsLocked()
	return nil
}

// Snapshot returns a consistent view of both sides and the LTP, taken
// under the lock.
func (b *OrderBook) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ltp *int64
	if b.ltp != nil {
		v := *b.ltp
		ltp = &v
	}
	return Snapshot{
		Bids: b.bids.Snapshot(),
		Asks: b.asks.Snapshot(),
		LTP:  ltp,
	}
}

// LTP returns the last traded price, or nil if no trade has occurred yet.
func (b *OrderBook) LTP() *int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ltp == nil {
		return nil
	}
	v := *b.ltp
	return &v
}

// Trades returns a copy of the trade log taken under the lock. The log
// itself is never mutated once a trade is appended.
func (b *OrderBook) Trades() []domain.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

func (b *OrderBook) sideIndex(side domain.Side) *PriceIndex {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// matchAll repeatedly pairs the best bid against the best ask while the
// book is crossed, draining FIFO queues at each level and cleaning up
// levels left empty. Must be called with mu held.
func (b *OrderBook) matchAll() {
	for {
		bidPrice, bidQueue, hasBid := b.bids.Best()
		askPrice, askQueue, hasAsk := b.asks.Best()
		if !hasBid || !hasAsk || bidPrice < askPrice {
			return
		}

		for bidQueue.Len() > 0 && askQueue.Len() > 0 {
			bid := bidQueue.PeekHead()
			ask := askQueue.PeekHead()

			qty := min64(bid.Residual, ask.Residual)
			price := domain.RestingPrice(bid, ask)

			b.recordTrade(bid, ask, price, qty)

			bid.Fill(qty)
			ask.Fill(qty)

			if bid.IsFullyFilled() {
				bidQueue.Unlink(bid)
				delete(b.orders, bid.ID)
			}
			if ask.IsFullyFilled() {
				askQueue.Unlink(ask)
				delete(b.orders, ask.ID)
			}
		}

		if bidQueue.IsEmpty() {
			b.bids.Remove(bidPrice)
		}
		if askQueue.IsEmpty() {
			b.asks.Remove(askPrice)
		}
	}
}

func (b *OrderBook) recordTrade(bid, ask *domain.Order, price, qty int64) {
	aggressorSide := domain.SideSell
	aggressorID, restingID := ask.ID, bid.ID
	// The resting order is whichever established priority first; the other
	// one is the aggressor for this pairing.
	if bid.Timestamp.After(ask.Timestamp) || (bid.Timestamp.Equal(ask.Timestamp) && bid.ID > ask.ID) {
		aggressorSide = domain.SideBuy
		aggressorID, restingID = bid.ID, ask.ID
	}

	trade := domain.Trade{
		Symbol:        b.symbol,
		AggressorID:   aggressorID,
		RestingID:     restingID,
		AggressorSide: aggressorSide,
		Price:         price,
		Quantity:      qty,
		Timestamp:     time.Now(),
	}
	b.trades = append(b.trades, trade)
	b.ltp = &price
	tradesTotal.WithLabelValues(b.symbol).Inc()

	if b.tradeFeed != nil {
		b.tradeFeed.TryPublish(trade)
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
