// Package testutil provides shared helpers for package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/awray/strand/internal/domain"
	"github.com/awray/strand/internal/journal"
)

// DiscardLogger returns a logger that drops everything, so concurrency
// tests with hundreds of thousands of calls don't drown in debug logs.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// StartLoop creates a serial domain and closes it on test cleanup.
func StartLoop(t *testing.T, name string) *domain.Loop {
	t.Helper()

	loop := domain.NewLoop(name, domain.WithLogger(DiscardLogger()))
	t.Cleanup(func() {
		loop.Close()
		loop.Wait()
	})
	return loop
}

// MemJournal opens an isolated in-memory journal and closes it on test
// cleanup.
func MemJournal(t *testing.T) *journal.Journal {
	t.Helper()

	j, err := journal.OpenMemory(journal.WithLogger(DiscardLogger()))
	require.NoError(t, err, "open in-memory journal")
	t.Cleanup(func() {
		require.NoError(t, j.Close(), "close journal")
	})
	return j
}
