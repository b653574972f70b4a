// Package matching composes independent per-symbol order books into one
// multi-security engine and owns the order-id sequence shared across them.
package matching

import (
	"errors"
	"sync/atomic"

	"matchbook/domain"
	"matchbook/idgen"
	"matchbook/orderbook"
)

// ErrUnknownSymbol is returned by any MultiBook operation addressing a
// symbol the registry was not seeded with.
var ErrUnknownSymbol = errors.New("matching: unknown symbol")

// MultiBook is a fixed registry of symbol to OrderBook, built once at
// construction. Lookups are served from an immutable map published
// through atomic.Value, so BookOf never takes a lock and cross-symbol
// calls never contend with one another.
type MultiBook struct {
	books atomic.Value // map[string]*orderbook.OrderBook
	ids   *idgen.Generator
}

// NewMultiBook creates a book for each symbol and returns the registry
// ready to serve traffic. The symbol set is fixed for the registry's
// lifetime; there is no AddSymbol.
func NewMultiBook(symbols ...string) *MultiBook {
	books := make(map[string]*orderbook.OrderBook, len(symbols))
	for _, s := range symbols {
		books[s] = orderbook.NewOrderBook(s)
	}

	mb := &MultiBook{ids: idgen.New()}
	mb.books.Store(books)
	return mb
}

// BookOf returns the OrderBook for symbol, or nil if the registry was not
// seeded with it.
func (m *MultiBook) BookOf(symbol string) *orderbook.OrderBook {
	books := m.books.Load().(map[string]*orderbook.OrderBook)
	return books[symbol]
}

// ListSymbols returns the registry's fixed symbol set, in no particular
// order.
func (m *MultiBook) ListSymbols() []string {
	books := m.books.Load().(map[string]*orderbook.OrderBook)
	out := make([]string, 0, len(books))
	for s := range books {
		out = append(out, s)
	}
	return out
}

// SubmitLimit builds a new limit order with the next generated id and
// routes it to symbol's book. Returns the assigned order id on success.
func (m *MultiBook) SubmitLimit(symbol string, side domain.Side, price, quantity int64, traderID string) (int64, error) {
	book := m.BookOf(symbol)
	if book == nil {
		return 0, ErrUnknownSymbol
	}

	id := m.ids.Next()
	order := domain.NewLimitOrder(id, symbol, side, price, quantity, traderID)
	if err := book.Submit(order); err != nil {
		return 0, err
	}
	return id, nil
}

// Cancel routes a cancel request to symbol's book.
func (m *MultiBook) Cancel(symbol string, orderID int64) error {
	book := m.BookOf(symbol)
	if book == nil {
		return ErrUnknownSymbol
	}
	return book.Cancel(orderID)
}

// Snapshot returns symbol's current book state, or false if symbol is not
// registered.
func (m *MultiBook) Snapshot(symbol string) (orderbook.Snapshot, bool) {
	book := m.BookOf(symbol)
	if book == nil {
		return orderbook.Snapshot{}, false
	}
	return book.Snapshot(), true
}
