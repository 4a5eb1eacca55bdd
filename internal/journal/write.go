package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteTx is work executed inside a journal write transaction, on the
// writer gate's context. The context carries the gate's identity, not
// the canonical domain's: code in here that must mutate protected state
// has to route that mutation through the affinity router like any other
// foreign-context caller.
type WriteTx func(ctx context.Context, tx *sql.Tx) error

// Write executes fn inside a transaction on the writer gate and blocks
// until commit. This is the storage engine's write(transaction)
// primitive: writes are mutually exclusive with each other, but the
// gate's serialization domain is independent of the canonical domain.
//
// If fn returns an error the transaction is rolled back and the error
// is returned. Re-entrant Write from inside a write transaction is not
// supported (single connection, no nested transactions).
func (j *Journal) Write(ctx context.Context, fn WriteTx) error {
	return j.writes.Do(ctx, func(gateCtx context.Context) error {
		tx, err := j.db.BeginTx(gateCtx, nil)
		if err != nil {
			return fmt.Errorf("begin write: %w", err)
		}
		defer tx.Rollback() // No-op if committed

		if err := fn(gateCtx, tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit write: %w", err)
		}
		return nil
	})
}

// Record appends a mutation without waiting for the insert to land.
//
// Intended to be called from inside the canonical domain's critical
// section: the insert is enqueued on the writer gate and runs there
// later, so the canonical domain never blocks on storage. Because the
// canonical domain is the only submitter of Record tasks, journal rows
// land in seq order.
//
// Returns an error only if the gate rejected the submission (journal
// closed); an accepted append that later fails the insert is logged,
// not surfaced, since the caller has already moved on.
func (j *Journal) Record(m Mutation) error {
	err := j.gate.Submit(context.Background(), func(gateCtx context.Context) {
		if err := j.insertMutation(gateCtx, m); err != nil {
			j.logger.Error("write-behind append failed",
				"seq", m.Seq, "source", m.Source, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("record mutation seq=%d: %w", m.Seq, err)
	}
	return nil
}

// AppendMutation inserts a mutation synchronously inside its own write
// transaction. Used by gate-origin callers that already hold the write
// path, and by tests.
func (j *Journal) AppendMutation(ctx context.Context, m Mutation) error {
	return j.Write(ctx, func(gateCtx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(gateCtx, `
			INSERT INTO mutations (seq, source, delta, total)
			VALUES (?, ?, ?, ?)
		`, m.Seq, m.Source, m.Delta, m.Total)
		if err != nil {
			return fmt.Errorf("append mutation seq=%d: %w", m.Seq, err)
		}
		return nil
	})
}

// Flush blocks until every append accepted before the call has been
// applied. Works by submitting a barrier task to the gate FIFO.
func (j *Journal) Flush(ctx context.Context) error {
	done := make(chan struct{})
	err := j.gate.Submit(ctx, func(context.Context) {
		close(done)
	})
	if err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	<-done
	return nil
}

// insertMutation runs on the gate outside an explicit transaction; a
// single INSERT is atomic on its own.
func (j *Journal) insertMutation(ctx context.Context, m Mutation) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO mutations (seq, source, delta, total)
		VALUES (?, ?, ?, ?)
	`, m.Seq, m.Source, m.Delta, m.Total)
	return err
}
