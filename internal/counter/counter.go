// Package counter holds the protected shared state: a single counter
// whose every read-modify-write is funneled through the affinity
// router onto the canonical domain.
//
// The value field carries no lock and no atomics. Serialization on the
// canonical domain is the only thing protecting it, which is the point:
// any access outside a routed call is a bug, and the unsynchronized
// methods exist solely so the demo harness can show what that bug
// looks like.
package counter

import (
	"context"
	"fmt"

	"github.com/awray/strand/internal/affinity"
	"github.com/awray/strand/internal/domain"
	"github.com/awray/strand/internal/journal"
)

// Counter is the shared mutable state.
type Counter struct {
	router *affinity.Router
	clock  *domain.Clock
	jour   *journal.Journal // nil when journaling is disabled

	// value is owned by the canonical domain. Mutated and read only
	// inside routed critical sections, except by the *Unsynced methods.
	value int64
}

// Option configures a Counter.
type Option func(*Counter)

// WithJournal enables write-behind journaling of every mutation.
func WithJournal(j *journal.Journal) Option {
	return func(c *Counter) {
		c.jour = j
	}
}

// WithClock sets the logical clock stamping mutations.
// Defaults to a fresh clock starting at 0.
func WithClock(clock *domain.Clock) Option {
	return func(c *Counter) {
		c.clock = clock
	}
}

// New creates a counter protected by the given router.
func New(router *affinity.Router, opts ...Option) *Counter {
	c := &Counter{
		router: router,
		clock:  domain.NewClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Increment adds 1 to the counter on the canonical domain.
// source names the origin for the journal's audit trail.
func (c *Counter) Increment(ctx context.Context, source string) error {
	return c.Add(ctx, source, 1)
}

// Add applies delta to the counter on the canonical domain.
//
// The seq stamp, the new total, and the journal append all happen
// inside the critical section, so journal order equals serialization
// order. The append is write-behind (journal.Record): the canonical
// domain never blocks on storage.
func (c *Counter) Add(ctx context.Context, source string, delta int64) error {
	return c.router.Do(ctx, func(context.Context) error {
		c.value += delta
		if c.jour == nil {
			return nil
		}
		return c.jour.Record(journal.Mutation{
			Seq:    c.clock.Next(),
			Source: source,
			Delta:  delta,
			Total:  c.value,
		})
	})
}

// Value reads the counter through the router, so the read observes a
// quiescent value ordered after every mutation submitted before it.
func (c *Counter) Value(ctx context.Context) (int64, error) {
	var v int64
	err := c.router.Do(ctx, func(context.Context) error {
		v = c.value
		return nil
	})
	return v, err
}

// Restore loads the last journaled total and resumes the value and the
// clock from it. Must be called before the counter is shared; the load
// itself is routed, but the clock swap assumes no concurrent callers.
func (c *Counter) Restore(ctx context.Context) error {
	if c.jour == nil {
		return fmt.Errorf("restore: counter has no journal")
	}

	last, ok, err := c.jour.LastMutation(ctx)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if !ok {
		return nil
	}

	c.clock = domain.NewClockAt(last.Seq)
	return c.router.Do(ctx, func(context.Context) error {
		c.value = last.Total
		return nil
	})
}

// IncrementUnsynced bumps the counter with no routing and no
// serialization. Demo baseline only: concurrent use races by design.
func (c *Counter) IncrementUnsynced() {
	c.value++
}

// ValueUnsynced reads the counter without routing. Demo baseline only;
// callers must have quiesced all writers first.
func (c *Counter) ValueUnsynced() int64 {
	return c.value
}
