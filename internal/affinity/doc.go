// Package affinity routes critical sections onto one canonical serial
// domain.
//
// The problem: shared state is mutated by code running on independently
// scheduled subsystems (application worker goroutines, the journal's
// internal writer gate). Each subsystem is serial within itself, but
// their serialization domains are disjoint, so mutations interleave and
// race. No lock protects the state; instead, every mutation is funneled
// onto a single canonical domain.
//
// Router.Do implements the funnel:
//
//  1. Probe the calling context's domain identity (domain.Current).
//  2. Already on the canonical domain: run the work in place. No
//     submission, no blocking. This is what makes nested Do calls from
//     inside a routed critical section safe rather than deadlocking.
//  3. Anywhere else: submit a task to the canonical domain that
//     re-invokes Do with the task's own context, and block the caller
//     on a one-shot completion channel until the work has finished.
//
// The slow path re-invokes Do rather than calling the work directly so
// that identity is re-validated on the context the task actually runs
// under, tolerating indirection in how the canonical domain is reached.
// Re-dispatch hops are bounded; a submission chain that never lands on
// the canonical domain fails with ErrCodeRedispatchLimit instead of
// recursing without bound.
//
// Guarantees, for every call to Do:
//   - the work runs exactly once
//   - on return, the work has completed and its effects are visible
//   - across concurrent callers, all work is linearized by the
//     canonical domain's FIFO into a single total order
//
// HAZARD: Do must not be invoked from a domain whose current task is
// itself blocking on this router's canonical domain through a path the
// probe cannot see (for example, a synchronous journal write issued
// from a canonical task while a gate task is blocked on the canonical
// domain). That cycle is a caller-side precondition violation; the
// router cannot detect it.
package affinity
