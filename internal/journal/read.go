package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Mutations returns the full journal in serialization order (seq ASC).
func (j *Journal) Mutations(ctx context.Context) ([]Mutation, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, source, delta, total
		FROM mutations
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read mutations: %w", err)
	}
	defer rows.Close()

	var out []Mutation
	for rows.Next() {
		var m Mutation
		if err := rows.Scan(&m.Seq, &m.Source, &m.Delta, &m.Total); err != nil {
			return nil, fmt.Errorf("scan mutation: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read mutations: %w", err)
	}

	return out, nil
}

// MutationCount returns the number of journaled mutations.
func (j *Journal) MutationCount(ctx context.Context) (int64, error) {
	var n int64
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mutations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count mutations: %w", err)
	}
	return n, nil
}

// LastMutation returns the highest-seq mutation, or (zero, false) if
// the journal is empty. Used to resume a counter after restart.
func (j *Journal) LastMutation(ctx context.Context) (Mutation, bool, error) {
	var m Mutation
	err := j.db.QueryRowContext(ctx, `
		SELECT seq, source, delta, total
		FROM mutations
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&m.Seq, &m.Source, &m.Delta, &m.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return Mutation{}, false, nil
	}
	if err != nil {
		return Mutation{}, false, fmt.Errorf("read last mutation: %w", err)
	}
	return m, true, nil
}
