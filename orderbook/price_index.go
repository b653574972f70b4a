package orderbook

import (
	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

// PriceIndex is the ordered price -> LevelQueue container for one side of
// one book: a red-black tree keyed by price, with a comparator that puts
// the best price first for the side it serves. That makes Left() always
// the best price: descending for bids, ascending for asks.
type PriceIndex struct {
	tree *rbt.Tree[int64, *LevelQueue]
}

// NewPriceIndex creates an empty index. descending selects bid ordering
// (highest price first); false selects ask ordering (lowest price first).
func NewPriceIndex(descending bool) *PriceIndex {
	cmp := ascending
	if descending {
		cmp = descendingCmp
	}
	return &PriceIndex{tree: rbt.NewWith[int64, *LevelQueue](cmp)}
}

func ascending(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func descendingCmp(a, b int64) int {
	return ascending(b, a)
}

// GetOrCreate returns the LevelQueue at price, creating an empty one if
// absent.
func (p *PriceIndex) GetOrCreate(price int64) *LevelQueue {
	if lq, ok := p.tree.Get(price); ok {
		return lq
	}
	lq := &LevelQueue{}
	p.tree.Put(price, lq)
	return lq
}

// Find is a non-mutating lookup.
func (p *PriceIndex) Find(price int64) (*LevelQueue, bool) {
	return p.tree.Get(price)
}

// Remove deletes the level at price. A no-op if price is absent.
func (p *PriceIndex) Remove(price int64) {
	p.tree.Remove(price)
}

// Best returns the best price and its queue. ok is false when the index is
// empty.
func (p *PriceIndex) Best() (price int64, queue *LevelQueue, ok bool) {
	node := p.tree.Left()
	if node == nil {
		return 0, nil, false
	}
	return node.Key, node.Value, true
}

// Len returns the number of distinct price levels.
func (p *PriceIndex) Len() int {
	return p.tree.Size()
}

// PriceLevelView is one row of a snapshot projection.
type PriceLevelView struct {
	Price    int64
	Quantity int64
	OrderIDs []int64
}

// Snapshot walks the index in best-first order, returning one row per
// price level with its aggregate quantity and resting order IDs.
func (p *PriceIndex) Snapshot() []PriceLevelView {
	views := make([]PriceLevelView, 0, p.tree.Size())
	it := p.tree.Iterator()
	for it.Next() {
		lq := it.Value()
		ids := make([]int64, 0, lq.Len())
		for _, o := range lq.Orders() {
			ids = append(ids, o.ID)
		}
		views = append(views, PriceLevelView{
			Price:    it.Key(),
			Quantity: lq.Volume(),
			OrderIDs: ids,
		})
	}
	return views
}
