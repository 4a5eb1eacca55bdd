// Package domain implements serial execution domains with discoverable
// identity.
//
// A serial execution domain is a scheduler that runs one task at a time,
// in submission order per submitter. Two domains matter in this system:
// the canonical executor that all protected mutations are routed onto,
// and the journal's internal writer gate. Both are instances of the same
// Domain abstraction; any number of additional domains may coexist.
//
// ARCHITECTURE:
//
// Single-Goroutine Loop:
// Loop drains an unbounded FIFO task queue from exactly one goroutine.
// This ensures:
// - At most one task runs on the domain at any instant
// - Tasks from a single submitter run in submission order
// - Submit never blocks the submitter (the queue is unbounded)
//
// Identity Probe:
// Goroutines carry no accessible identity, so the probe is carried by
// context. The loop wraps each task's context with a run token that is
// armed only while the loop is actively executing that task. Current()
// reports the domain identity iff the token in the context is armed.
//
// The probe contract is asymmetric by design:
// - No false positives: a context can never claim a domain it is not
//   presently running on. Tokens are minted only by the loop, and a
//   token retained past its task's completion is disarmed.
// - False negatives permitted: a caller that genuinely is on the domain
//   but probes with a context lacking the task's token sees Unknown.
//   That only forces the slow path; it is never a correctness hazard.
//
// Logical Clock:
// All routed mutations are stamped with a monotonic seq number from
// Clock.Next(). Ordering uses seq, never wall-clock timestamps.
package domain
