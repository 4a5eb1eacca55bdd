package domain

import "context"

// Task is a unit of work executed on a serial domain.
//
// The context passed to the task is the domain's own context, carrying
// the domain's run token; it is NOT the submitter's context. Deadlines
// and values on the submitting context do not transfer across the
// submission boundary.
type Task func(ctx context.Context)

// Domain is a serial execution domain with discoverable identity.
//
// Implementations must guarantee:
//   - Identity() is stable for the domain's lifetime and unique among
//     all domains in the process.
//   - Submit accepts tasks from any goroutine and executes them one at
//     a time, in submission order per submitter.
//
// Loop is the in-process implementation. The journal's writer gate and
// the canonical executor are both Domains; the affinity router works
// uniformly over any Domain.
type Domain interface {
	// Identity returns the domain's immutable identity token.
	Identity() Identity

	// Submit enqueues a task for execution on the domain.
	//
	// Submit never blocks waiting for the task to run. It returns
	// ErrClosed if the domain has been closed; a rejected task is
	// guaranteed never to execute.
	Submit(ctx context.Context, task Task) error
}
