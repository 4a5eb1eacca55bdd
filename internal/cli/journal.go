package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/awray/strand/internal/harness"
	"github.com/awray/strand/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Dump and verify a persisted mutation journal",
		Long: `Print the mutation journal in serialization order and verify that it
records one coherent total order (strictly increasing seq, consistent
running totals).

Example:
  strand journal --db ./strand.db
  strand journal --db ./strand.db --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite journal (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "print at most N rows (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	jour, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer jour.Close()

	ctx := cmd.Context()
	muts, err := jour.Mutations(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	shown := muts
	if opts.Limit > 0 && len(shown) > opts.Limit {
		shown = shown[:opts.Limit]
	}

	var b strings.Builder
	for _, m := range shown {
		fmt.Fprintf(&b, "seq=%d source=%s delta=%d total=%d\n", m.Seq, m.Source, m.Delta, m.Total)
	}
	fmt.Fprintf(&b, "rows: %d\n", len(muts))

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := out.Success(b.String(), shown); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}

	if err := harness.VerifyJournal(ctx, jour); err != nil {
		return WrapExitError(ExitFailure, "journal inconsistent", err)
	}
	return nil
}
