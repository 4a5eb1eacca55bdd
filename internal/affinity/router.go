package affinity

import (
	"context"
	"sync/atomic"

	"github.com/awray/strand/internal/domain"
)

// maxRedispatch bounds the trampolined re-dispatch chain. One hop is
// the normal slow path; anything deeper means the target domain is
// proxying submissions through contexts that lack its identity.
const maxRedispatch = 8

// Work is a critical section executed on the canonical domain.
// The context it receives carries the canonical domain's identity, so
// nested Router.Do calls from inside the work take the fast path.
type Work func(ctx context.Context) error

// Router funnels work onto one canonical serial domain.
//
// The router owns no mutable state beyond a submission counter; it only
// routes. It is safe for concurrent use from any number of goroutines
// and domains.
type Router struct {
	canonical   domain.Domain
	submissions atomic.Int64
}

// New creates a Router targeting the given canonical domain.
// Panics if the domain is nil (construction-time misuse).
func New(canonical domain.Domain) *Router {
	if canonical == nil {
		panic("affinity: nil canonical domain")
	}
	return &Router{canonical: canonical}
}

// Canonical returns the router's target domain.
func (r *Router) Canonical() domain.Domain {
	return r.canonical
}

// SubmissionCount returns the number of slow-path submissions performed
// so far. Fast-path calls leave the count unchanged.
func (r *Router) SubmissionCount() int64 {
	return r.submissions.Load()
}

// Do executes work on the canonical domain and returns its error.
//
// Callable from any context, any number of times, concurrently. The
// work runs exactly once per call. When Do returns, the work has fully
// completed and its effects are visible to the caller.
//
// Fast path: the calling context is already executing on the canonical
// domain; the work runs in place with no submission and no blocking.
//
// Slow path: the work is handed to the canonical domain and the caller
// blocks until it completes. Cancellation of ctx is honored before
// submission only — once the task is accepted, the call runs to
// completion, because abandoning the wait would let the work execute
// after Do returned.
//
// A *RouteError is returned if the work could not be placed on the
// canonical domain; the work did not run in that case.
func (r *Router) Do(ctx context.Context, work Work) error {
	return r.do(ctx, work, 0)
}

func (r *Router) do(ctx context.Context, work Work, hops int) error {
	// Identity check comes before any submission. A task already on the
	// canonical domain that re-enters Do must run in place; submitting
	// to itself and blocking would deadlock the domain.
	if id, ok := domain.Current(ctx); ok && id == r.canonical.Identity() {
		return work(ctx)
	}

	if hops >= maxRedispatch {
		return &RouteError{
			Code:    ErrCodeRedispatchLimit,
			Domain:  r.domainName(),
			Message: "re-dispatch never reached the canonical domain",
		}
	}

	done := make(chan error, 1)
	err := r.canonical.Submit(ctx, func(taskCtx context.Context) {
		// Re-validate identity on the context the task actually runs
		// under instead of assuming the submission landed us there.
		done <- r.do(taskCtx, work, hops+1)
	})
	if err != nil {
		// Surfaced, never dropped: a silently lost mutation would
		// corrupt the protected state's update history.
		return &RouteError{
			Code:    ErrCodeSubmissionFailed,
			Domain:  r.domainName(),
			Message: "canonical domain rejected task",
			Err:     err,
		}
	}
	r.submissions.Add(1)

	return <-done
}

func (r *Router) domainName() string {
	if n, ok := r.canonical.(interface{ Name() string }); ok {
		return n.Name()
	}
	return r.canonical.Identity().String()
}
