package domain

import "sync/atomic"

// Clock is a monotonic logical clock for ordering routed mutations.
//
// Every mutation funneled onto the canonical domain is stamped with a
// strictly increasing seq number from this clock. This ensures:
// - The serialization order is explicit and durable (journal rows)
// - No reliance on wall-clock time for ordering
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// In practice only the canonical domain's tasks call Next(), so seq
// order and execution order coincide.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used when resuming a counter from its journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
