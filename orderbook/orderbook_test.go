package orderbook

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/domain"
)

// tradeTuple is the (qty, price) shape the canonical scenarios assert on.
type tradeTuple struct {
	qty, price int64
}

func tradeTuples(trades []domain.Trade) []tradeTuple {
	out := make([]tradeTuple, len(trades))
	for i, tr := range trades {
		out[i] = tradeTuple{qty: tr.Quantity, price: tr.Price}
	}
	return out
}

// Scenario A — FIFO across levels with residual; the repository's canonical test.
func TestScenarioA_FIFOAcrossLevelsWithResidual(t *testing.T) {
	book := NewOrderBook("BTCUSDT")

	require.NoError(t, book.Submit(newTestOrder(1, domain.SideBuy, 100, 5)))
	require.NoError(t, book.Submit(newTestOrder(2, domain.SideBuy, 101, 3)))
	require.NoError(t, book.Submit(newTestOrder(3, domain.SideBuy, 100, 4)))
	require.NoError(t, book.Submit(newTestOrder(4, domain.SideBuy, 102, 2)))
	require.NoError(t, book.Submit(newTestOrder(5, domain.SideSell, 100, 6)))
	require.NoError(t, book.Submit(newTestOrder(6, domain.SideSell, 101, 5)))
	require.NoError(t, book.Submit(newTestOrder(7, domain.SideSell, 102, 3)))

	// Submission 5 (SELL 6@100) already crosses against the resting BUY
	// 2@102 from submission 4 — continuous matching never lets the book sit
	// crossed between calls, so this drains three levels (102, 101, 100)
	// right here, well before the order 8 "aggressor" exists. See DESIGN.md
	// for why this diverges from a deferred-matching reading of the same
	// submission sequence.
	aggressor := newTestOrder(8, domain.SideBuy, 102, 14)
	require.NoError(t, book.Submit(aggressor))

	want := []tradeTuple{
		{2, 102},
		{3, 101},
		{1, 100},
		{5, 101},
		{3, 102},
	}
	assert.Equal(t, want, tradeTuples(book.Trades()))

	snap := book.Snapshot()
	assert.Empty(t, snap.Asks)
	require.Len(t, snap.Bids, 2)
	assert.Equal(t, int64(102), snap.Bids[0].Price)
	assert.Equal(t, int64(6), snap.Bids[0].Quantity)
	assert.Equal(t, []int64{8}, snap.Bids[0].OrderIDs)
	assert.Equal(t, int64(100), snap.Bids[1].Price)
	assert.Equal(t, int64(8), snap.Bids[1].Quantity)
	assert.Equal(t, []int64{1, 3}, snap.Bids[1].OrderIDs)
	require.NotNil(t, snap.LTP)
	assert.Equal(t, int64(102), *snap.LTP)
}

// Scenario B — cancel before match.
func TestScenarioB_CancelBeforeMatch(t *testing.T) {
	book := NewOrderBook("BTCUSDT")

	require.NoError(t, book.Submit(newTestOrder(1, domain.SideBuy, 100, 10)))
	require.NoError(t, book.Cancel(1))
	require.NoError(t, book.Submit(newTestOrder(2, domain.SideSell, 100, 10)))

	snap := book.Snapshot()
	assert.Empty(t, snap.Bids)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, int64(100), snap.Asks[0].Price)
	assert.Equal(t, int64(10), snap.Asks[0].Quantity)
	assert.Nil(t, snap.LTP)
	assert.Empty(t, book.Trades())
}

// Scenario C — crossing submission fully consumes one level and partially
// consumes the next.
func TestScenarioC_FullyConsumesOneLevelPartiallyAnother(t *testing.T) {
	book := NewOrderBook("BTCUSDT")

	require.NoError(t, book.Submit(newTestOrder(1, domain.SideSell, 100, 5)))
	require.NoError(t, book.Submit(newTestOrder(2, domain.SideSell, 101, 5)))
	require.NoError(t, book.Submit(newTestOrder(3, domain.SideBuy, 101, 8)))

	want := []tradeTuple{{5, 100}, {3, 101}}
	assert.Equal(t, want, tradeTuples(book.Trades()))

	snap := book.Snapshot()
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, int64(101), snap.Asks[0].Price)
	assert.Equal(t, int64(2), snap.Asks[0].Quantity)
	require.NotNil(t, snap.LTP)
	assert.Equal(t, int64(101), *snap.LTP)
}

// Scenario D — partial fill leaves residual resting.
func TestScenarioD_PartialFillLeavesResidual(t *testing.T) {
	book := NewOrderBook("BTCUSDT")

	require.NoError(t, book.Submit(newTestOrder(1, domain.SideSell, 50, 3)))
	require.NoError(t, book.Submit(newTestOrder(2, domain.SideBuy, 50, 10)))

	want := []tradeTuple{{3, 50}}
	assert.Equal(t, want, tradeTuples(book.Trades()))

	snap := book.Snapshot()
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, int64(50), snap.Bids[0].Price)
	assert.Equal(t, int64(7), snap.Bids[0].Quantity)
	require.NotNil(t, snap.LTP)
	assert.Equal(t, int64(50), *snap.LTP)
}

// Scenario E — no cross due to price.
func TestScenarioE_NoCrossDueToPrice(t *testing.T) {
	book := NewOrderBook("BTCUSDT")

	require.NoError(t, book.Submit(newTestOrder(1, domain.SideBuy, 99, 5)))
	require.NoError(t, book.Submit(newTestOrder(2, domain.SideSell, 101, 5)))

	assert.Empty(t, book.Trades())
	snap := book.Snapshot()
	require.Len(t, snap.Bids, 1)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, int64(99), snap.Bids[0].Price)
	assert.Equal(t, int64(101), snap.Asks[0].Price)
}

// Scenario F — concurrent submission from many goroutines must preserve the
// book's invariants: never crossed, total qty conserved, id index consistent.
func TestScenarioF_ConcurrentSubmission(t *testing.T) {
	book := NewOrderBook("BTCUSDT")

	const (
		numGoroutines    = 8
		ordersPerRoutine = 200
	)

	var wg sync.WaitGroup
	var idCounter int64
	var idMu sync.Mutex
	nextID := func() int64 {
		idMu.Lock()
		defer idMu.Unlock()
		idCounter++
		return idCounter
	}

	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < ordersPerRoutine; i++ {
				side := domain.SideBuy
				if (g+i)%2 == 0 {
					side = domain.SideSell
				}
				price := int64(100 + (i % 5))
				order := newTestOrder(nextID(), side, price, 1)
				if err := book.Submit(order); err != nil {
					t.Errorf("unexpected submit error: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	snap := book.Snapshot()
	if len(snap.Bids) > 0 && len(snap.Asks) > 0 {
		assert.Less(t, snap.Bids[0].Price, snap.Asks[0].Price, "book must never be left crossed")
	}

	// Every submitted unit either still rests or was consumed by a trade;
	// each trade consumes its quantity from both a bid and an ask.
	var resting, traded int64
	for _, level := range append(append([]PriceLevelView{}, snap.Bids...), snap.Asks...) {
		resting += level.Quantity
	}
	for _, tr := range book.Trades() {
		traded += tr.Quantity
	}
	assert.Equal(t, int64(numGoroutines*ordersPerRoutine), resting+2*traded, "total quantity must be conserved")

	// Every resting order in the snapshot must also be present in the id
	// index (checked indirectly: cancel must succeed for every listed id).
	for _, level := range append(append([]PriceLevelView{}, snap.Bids...), snap.Asks...) {
		for _, id := range level.OrderIDs {
			require.NoError(t, book.Cancel(id), "resting order %d should still be cancellable", id)
		}
	}
	finalSnap := book.Snapshot()
	assert.Empty(t, finalSnap.Bids)
	assert.Empty(t, finalSnap.Asks)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	book := NewOrderBook("BTCUSDT")

	cases := []struct {
		name  string
		order *domain.Order
		want  error
	}{
		{"zero quantity", newTestOrder(1, domain.SideBuy, 100, 0), ErrInvalidQuantity},
		{"negative price", newTestOrder(2, domain.SideBuy, -1, 5), ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := book.Submit(tc.order)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	unsupported := newTestOrder(3, domain.SideBuy, 100, 5)
	unsupported.Type = domain.OrderTypeMarket
	assert.ErrorIs(t, book.Submit(unsupported), ErrUnsupportedOrderType)
}

func TestSubmitRejectsDuplicateID(t *testing.T) {
	book := NewOrderBook("BTCUSDT")
	require.NoError(t, book.Submit(newTestOrder(1, domain.SideBuy, 100, 5)))
	err := book.Submit(newTestOrder(1, domain.SideSell, 100, 5))
	assert.ErrorIs(t, err, ErrDuplicateOrderID)
}

func TestCancelIsIdempotent(t *testing.T) {
	book := NewOrderBook("BTCUSDT")
	require.NoError(t, book.Submit(newTestOrder(1, domain.SideBuy, 100, 5)))
	require.NoError(t, book.Cancel(1))
	assert.ErrorIs(t, book.Cancel(1), ErrOrderNotFound)
}

func TestDrainedLevelCanBeReopened(t *testing.T) {
	book := NewOrderBook("BTCUSDT")
	require.NoError(t, book.Submit(newTestOrder(1, domain.SideSell, 100, 5)))
	require.NoError(t, book.Submit(newTestOrder(2, domain.SideBuy, 100, 5)))

	snap := book.Snapshot()
	assert.Empty(t, snap.Asks, "level should have been removed once drained")

	require.NoError(t, book.Submit(newTestOrder(3, domain.SideSell, 100, 2)))
	snap = book.Snapshot()
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, int64(2), snap.Asks[0].Quantity)
}

func ExampleOrderBook_Submit() {
	book := NewOrderBook("BTCUSDT")
	book.Submit(newTestOrder(1, domain.SideSell, 100, 5))
	book.Submit(newTestOrder(2, domain.SideBuy, 100, 5))
	fmt.Println(len(book.Trades()))
	// Output: 1
}
