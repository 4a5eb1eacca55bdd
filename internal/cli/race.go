package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awray/strand/internal/harness"
	"github.com/awray/strand/internal/journal"
)

// RaceOptions holds flags for the race command.
type RaceOptions struct {
	*RootOptions
	ScenarioFile string
	Origins      int
	Iterations   int
	Unsafe       bool
	Database     string
}

// NewRaceCommand creates the race command.
func NewRaceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RaceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "race",
		Short: "Run a race scenario against the affinity router",
		Long: `Run concurrent counter increments from multiple origins and report
whether every update survived.

By default two origins (a task executor and the journal's writer gate)
each increment the counter 100,000 times through the affinity router;
the final value always equals the number of calls. With --unsafe the
increments bypass the router, demonstrating the lost-update race.

Example:
  strand race
  strand race --origins 4 --iterations 50000
  strand race --unsafe
  strand race --scenario scenarios/dual_origin.yaml --db ./strand.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ScenarioFile, "scenario", "", "path to a scenario YAML file")
	cmd.Flags().IntVar(&opts.Origins, "origins", 2, "number of task origins (ignored with --scenario)")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 100000, "increments per origin (ignored with --scenario)")
	cmd.Flags().BoolVar(&opts.Unsafe, "unsafe", false, "bypass the router (racy baseline)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the mutation journal to this SQLite file")

	return cmd
}

func runRace(opts *RaceOptions, cmd *cobra.Command) error {
	scenario, err := buildScenario(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid scenario", err)
	}

	runOpts := []harness.RunOption{}
	if opts.Database != "" {
		jour, err := journal.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer jour.Close()
		runOpts = append(runOpts, harness.WithJournal(jour))
	}

	report, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := out.Success(report.Render(), report); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if err := harness.VerifyReport(report); err != nil {
		return WrapExitError(ExitFailure, "verification failed", err)
	}
	return nil
}

// buildScenario resolves the scenario from --scenario or from flags.
func buildScenario(opts *RaceOptions) (*harness.Scenario, error) {
	if opts.ScenarioFile != "" {
		s, err := harness.LoadScenario(opts.ScenarioFile)
		if err != nil {
			return nil, err
		}
		if opts.Unsafe {
			s.Unsynchronized = true
		}
		return s, nil
	}

	s := harness.DefaultScenario()
	s.Unsynchronized = opts.Unsafe
	if opts.Origins != 2 || opts.Iterations != 100000 {
		s = flagScenario(opts.Origins, opts.Iterations, opts.Unsafe)
	}
	return s, nil
}

// flagScenario builds an all-task-origin scenario from flag values.
func flagScenario(origins, iterations int, unsafe bool) *harness.Scenario {
	s := &harness.Scenario{
		Name:           "flags",
		Description:    "scenario built from command-line flags",
		Unsynchronized: unsafe,
	}
	for i := 0; i < origins; i++ {
		s.Origins = append(s.Origins, harness.Origin{
			Name:       fmt.Sprintf("origin-%d", i+1),
			Kind:       harness.OriginTask,
			Workers:    1,
			Iterations: iterations,
		})
	}
	return s
}
