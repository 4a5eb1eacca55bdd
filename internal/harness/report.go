package harness

import (
	"fmt"
	"strings"
)

// OriginResult summarizes one origin's contribution to a run.
type OriginResult struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Workers    int    `json:"workers"`
	Iterations int    `json:"iterations"`
	Calls      int64  `json:"calls"`
}

// Report is the observable outcome of a scenario run.
type Report struct {
	Scenario       string         `json:"scenario"`
	Unsynchronized bool           `json:"unsynchronized"`
	Origins        []OriginResult `json:"origins"`

	// Expected is the number of increments issued.
	Expected int64 `json:"expected"`

	// Final is the counter value after all calls returned.
	Final int64 `json:"final"`

	// Lost is Expected - Final; non-zero means dropped updates.
	Lost int64 `json:"lost"`

	// Submissions counts slow-path hops onto the canonical domain.
	Submissions int64 `json:"submissions"`

	// Journaled reports whether a mutation journal was attached.
	Journaled bool `json:"journaled"`

	// JournalRows is the number of journaled mutations (when Journaled).
	JournalRows int64 `json:"journal_rows,omitempty"`
}

// Serialized reports whether every issued increment survived.
func (r *Report) Serialized() bool {
	return r.Final == r.Expected
}

// Render produces the stable text form used for golden comparison and
// CLI output. Field order and formatting are part of the golden
// contract; change them only together with the golden files.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario)
	mode := "synchronized"
	if r.Unsynchronized {
		mode = "unsynchronized"
	}
	fmt.Fprintf(&b, "mode: %s\n", mode)
	for _, o := range r.Origins {
		fmt.Fprintf(&b, "origin %s: kind=%s workers=%d iterations=%d calls=%d\n",
			o.Name, o.Kind, o.Workers, o.Iterations, o.Calls)
	}
	fmt.Fprintf(&b, "expected: %d\n", r.Expected)
	fmt.Fprintf(&b, "final: %d\n", r.Final)
	fmt.Fprintf(&b, "lost: %d\n", r.Lost)
	fmt.Fprintf(&b, "submissions: %d\n", r.Submissions)
	if r.Journaled {
		fmt.Fprintf(&b, "journal rows: %d\n", r.JournalRows)
	}
	fmt.Fprintf(&b, "serialized: %t\n", r.Serialized())

	return b.String()
}
