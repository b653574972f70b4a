// Package idgen hands out the monotonically increasing order identifiers
// the order book relies on for its id index and for cancel lookups.
package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator is a thread-safe, monotonically increasing int64 sequence.
// The zero value is ready to use and starts at 1; ids are never reused,
// even for cancelled or fully filled orders.
type Generator struct {
	counter atomic.Int64
}

// New returns a ready-to-use Generator.
func New() *Generator {
	return &Generator{}
}

// Next returns the next id in the sequence. Safe for concurrent use by
// any number of submitters.
func (g *Generator) Next() int64 {
	return g.counter.Add(1)
}

// NewTraderID mints an opaque trader identity. Unlike order ids, trader
// ids never need to be ordered or compared numerically — matching never
// looks inside one — so a random UUID avoids coordinating a counter
// across the session/HTTP layer that issues them.
func NewTraderID() string {
	return uuid.NewString()
}
