package orderbook

import "matchbook/domain"

// LevelQueue is the doubly linked FIFO of resting orders at one price
// level. It does not own price information; PriceIndex keys each queue by
// price. All operations are O(1): enqueue appends at the tail, unlink
// splices out a known reference without scanning.
type LevelQueue struct {
	head, tail *domain.Order
	size       int
}

// Enqueue appends o at the tail. o must not already be linked anywhere.
func (q *LevelQueue) Enqueue(o *domain.Order) {
	if o.Linked() {
		panic("orderbook: order already linked into a queue")
	}
	o.Prev = q.tail
	o.Next = nil
	if q.tail != nil {
		q.tail.Next = o
	} else {
		q.head = o
	}
	q.tail = o
	o.MarkQueued()
	q.size++
}

// Unlink splices o out of the queue by direct reference. o must currently
// be a member of q.
func (q *LevelQueue) Unlink(o *domain.Order) {
	if !o.Linked() {
		panic("orderbook: unlink of an order not in any queue")
	}
	if o.Prev != nil {
		o.Prev.Next = o.Next
	} else {
		q.head = o.Next
	}
	if o.Next != nil {
		o.Next.Prev = o.Prev
	} else {
		q.tail = o.Prev
	}
	o.Prev = nil
	o.Next = nil
	o.MarkUnqueued()
	q.size--
}

// PeekHead returns the oldest resting order, or nil if the queue is empty.
// It does not mutate the queue.
func (q *LevelQueue) PeekHead() *domain.Order {
	return q.head
}

// IsEmpty reports size == 0.
func (q *LevelQueue) IsEmpty() bool {
	return q.size == 0
}

// Len returns the number of orders currently resting at this level.
func (q *LevelQueue) Len() int {
	return q.size
}

// Volume returns the sum of residual quantities across the queue. It is
// O(n) in the level's depth; used only for snapshot projection, never on
// the matching hot path.
func (q *LevelQueue) Volume() int64 {
	var total int64
	for o := q.head; o != nil; o = o.Next {
		total += o.Residual
	}
	return total
}

// Orders returns the resting orders in FIFO order. Used for snapshot
// projection; callers must not mutate the returned orders.
func (q *LevelQueue) Orders() []*domain.Order {
	out := make([]*domain.Order, 0, q.size)
	for o := q.head; o != nil; o = o.Next {
		out = append(out, o)
	}
	return out
}
