// Package harness runs race scenarios against the affinity router.
//
// A scenario describes a set of origins — independent subsystems that
// each hammer the shared counter from their own scheduling context —
// and the harness measures whether every mutation survived. With
// routing enabled the final value always equals the number of calls;
// with the unsynchronized baseline it usually does not, which is the
// race the router exists to eliminate.
//
// # Scenario Format
//
// Scenarios are defined in YAML:
//
//	name: dual_origin
//	description: "task-executor and storage-writer callers interleaved"
//	journal: true
//	origins:
//	  - name: task-executor
//	    kind: task
//	    workers: 2
//	    iterations: 100
//	  - name: storage-writer
//	    kind: storage
//	    workers: 1
//	    iterations: 100
//
// Origin kinds:
//
//   - task: workers are plain goroutines calling Counter.Increment
//     directly (the application task executor).
//   - storage: workers call Journal.Write and route the increment from
//     inside the write transaction, i.e. from the writer gate's own
//     context. Requires journal: true.
//
// # Deterministic Reports
//
// For synchronized scenarios every report field is deterministic: the
// final value equals the expected total, the slow-path submission count
// equals total calls plus the final routed read, and the journal row
// count equals the number of journaled mutations. Reports are rendered
// to a stable text form and compared against golden files with goldie.
package harness
