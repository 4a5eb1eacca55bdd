package harness

import (
	"context"
	"fmt"

	"github.com/awray/strand/internal/journal"
)

// VerifyReport checks a synchronized run's report for lost updates.
// Unsynchronized runs are the racy baseline and are never "verified";
// they exist to show the loss.
func VerifyReport(r *Report) error {
	if r.Unsynchronized {
		return nil
	}
	if !r.Serialized() {
		return fmt.Errorf("scenario %q lost %d of %d updates", r.Scenario, r.Lost, r.Expected)
	}
	if r.Journaled && r.JournalRows != r.Expected {
		return fmt.Errorf("scenario %q journaled %d of %d mutations", r.Scenario, r.JournalRows, r.Expected)
	}
	return nil
}

// VerifyJournal checks that the journal records one coherent total
// order: seq strictly increasing and each total equal to the previous
// total plus the row's delta. This is the durable witness that all
// mutations were linearized on the canonical domain.
func VerifyJournal(ctx context.Context, j *journal.Journal) error {
	muts, err := j.Mutations(ctx)
	if err != nil {
		return err
	}

	var prevSeq, prevTotal int64
	for i, m := range muts {
		if m.Seq <= prevSeq {
			return fmt.Errorf("journal row %d: seq %d not after %d", i, m.Seq, prevSeq)
		}
		if m.Total != prevTotal+m.Delta {
			return fmt.Errorf("journal row %d: total %d != %d + %d", i, m.Total, prevTotal, m.Delta)
		}
		prevSeq = m.Seq
		prevTotal = m.Total
	}

	return nil
}
