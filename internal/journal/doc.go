// Package journal provides SQLite-backed durable history for routed
// mutations, and stands in for the storage engine collaborator.
//
// The journal owns a private writer gate: a serial domain of its own on
// which every write transaction executes. The gate serializes writers
// against each other exactly as a storage engine's internal write lock
// would, but its identity is independent of — and never interchangeable
// with — the canonical domain that protects application state. Code
// running inside a write transaction that needs to mutate protected
// state must still route that mutation through the affinity router.
//
// Two write paths exist:
//
//   - Write: synchronous transaction on the gate. The caller blocks
//     until commit. This is the storage engine's write(transaction)
//     primitive. Never call Write from a canonical-domain task while
//     gate-resident work may be blocked on the canonical domain; that
//     cycle deadlocks both domains.
//
//   - Record: write-behind append used by the counter from inside its
//     routed critical section. The insert is enqueued on the gate and
//     the caller does not wait, so the canonical domain never blocks on
//     the gate. Appends from a single submitter retain their submission
//     order, so journal seq order equals serialization order. Use Flush
//     to barrier before reading.
//
// Database configuration follows the usual single-writer SQLite setup:
// WAL mode, synchronous=NORMAL, busy_timeout, foreign keys on, one
// connection.
package journal
