// Package feed streams executed trades out of an order book to downstream
// consumers — market-data bots, the HTTP projection's websocket push, audit
// logging — without those consumers ever touching the book's lock.
package feed

import (
	"sync/atomic"
	_ "unsafe" // for go:linkname
)

//go:linkname semacquire sync.runtime_Semacquire
func semacquire(s *uint32)

//go:linkname semrelease sync.runtime_Semrelease
func semrelease(s *uint32, handoff bool, skipframes int)

const batchSize = 128

// RingBuffer is a fixed-capacity, single-writer-friendly MPMC queue backed
// by the runtime's semaphore primitives rather than channels: Publish and
// Consume block in semacquire instead of spinning, while TryPublish and
// TryConsume take slots with a CAS on the semaphore counts and never
// block. Capacity must be a power of two.
type RingBuffer[T any] struct {
	buffer     []T
	mask       int64
	writeSeq   atomic.Int64
	readSeq    atomic.Int64
	emptySlots uint32
	fullSlots  uint32
}

// New creates a RingBuffer with room for size elements.
func New[T any](size int) *RingBuffer[T] {
	if size&(size-1) != 0 {
		panic("feed: ring buffer size must be a power of 2")
	}

	rb := &RingBuffer[T]{
		buffer: make([]T, size),
		mask:   int64(size - 1),
	}
	for i := 0; i < size; i++ {
		semrelease(&rb.emptySlots, false, 0)
	}
	return rb
}

// Publish blocks until a slot is free, then enqueues v. Never call this
// from inside a book's critical section — a slow or wedged consumer would
// stall the matcher. Use TryPublish there instead.
func (rb *RingBuffer[T]) Publish(v T) {
	semacquire(&rb.emptySlots)
	seq := rb.writeSeq.Add(1) - 1
	rb.buffer[seq&rb.mask] = v
	semrelease(&rb.fullSlots, false, 0)
}

// TryPublish enqueues v without blocking, returning false if the buffer is
// full. This is the safe call from inside a locked section: a saturated
// feed degrades to dropped events rather than a stalled book.
func (rb *RingBuffer[T]) TryPublish(v T) bool {
	for {
		slots := atomic.LoadUint32(&rb.emptySlots)
		if slots == 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&rb.emptySlots, slots, slots-1) {
			break
		}
	}
	seq := rb.writeSeq.Add(1) - 1
	rb.buffer[seq&rb.mask] = v
	semrelease(&rb.fullSlots, false, 0)
	return true
}

// Consumer reads from a RingBuffer through a small local batch cache so
// that most reads never touch the shared sequence counters.
type Consumer[T any] struct {
	rb         *RingBuffer[T]
	localCache [batchSize]T
	cacheStart int
	cacheEnd   int
}

// NewConsumer attaches a Consumer to rb. All consumers of a RingBuffer
// share its read sequence, so each published element is delivered to
// exactly one of them.
func (rb *RingBuffer[T]) NewConsumer() *Consumer[T] {
	return &Consumer[T]{rb: rb}
}

// Consume blocks until at least one element is available and returns the
// next one in publish order.
func (c *Consumer[T]) Consume() T {
	if c.cacheStart < c.cacheEnd {
		v := c.localCache[c.cacheStart]
		c.cacheStart++
		return v
	}
	c.fillCache()
	v := c.localCache[c.cacheStart]
	c.cacheStart++
	return v
}

// TryConsume returns the next element without blocking, or false if the
// stream is currently empty.
func (c *Consumer[T]) TryConsume() (T, bool) {
	var zero T
	if c.cacheStart < c.cacheEnd {
		v := c.localCache[c.cacheStart]
		c.cacheStart++
		return v, true
	}
	if !c.tryFillCache() {
		return zero, false
	}
	v := c.localCache[c.cacheStart]
	c.cacheStart++
	return v, true
}

func (c *Consumer[T]) fillCache() {
	rb := c.rb

	semacquire(&rb.fullSlots)
	seq := rb.readSeq.Add(1) - 1
	c.localCache[0] = rb.buffer[seq&rb.mask]
	semrelease(&rb.emptySlots, false, 0)
	acquired := 1

	currentWrite := rb.writeSeq.Load()
	currentRead := rb.readSeq.Load()
	available := int(currentWrite - currentRead)
	if available > batchSize-1 {
		available = batchSize - 1
	}

	for i := 0; i < available; i++ {
		semacquire(&rb.fullSlots)
		seq := rb.readSeq.Add(1) - 1
		c.localCache[acquired] = rb.buffer[seq&rb.mask]
		semrelease(&rb.emptySlots, false, 0)
		acquired++
	}

	c.cacheStart = 0
	c.cacheEnd = acquired
}

func (c *Consumer[T]) tryFillCache() bool {
	rb := c.rb

	acquired := 0
	for i := 0; i < batchSize; i++ {
		slots := atomic.LoadUint32(&rb.fullSlots)
		if slots == 0 {
			break
		}
		if !atomic.CompareAndSwapUint32(&rb.fullSlots, slots, slots-1) {
			continue
		}
		seq := rb.readSeq.Add(1) - 1
		c.localCache[acquired] = rb.buffer[seq&rb.mask]
		semrelease(&rb.emptySlots, false, 0)
		acquired++
	}

	if acquired == 0 {
		return false
	}
	c.cacheStart = 0
	c.cacheEnd = acquired
	return true
}
