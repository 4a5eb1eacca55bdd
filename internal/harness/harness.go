package harness

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/awray/strand/internal/affinity"
	"github.com/awray/strand/internal/counter"
	"github.com/awray/strand/internal/domain"
	"github.com/awray/strand/internal/journal"
)

// RunOption configures a harness run.
type RunOption func(*runConfig)

type runConfig struct {
	logger  *slog.Logger
	journal *journal.Journal // caller-owned; nil means open in-memory
}

// WithLogger sets the logger for the run. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithJournal runs the scenario against a caller-owned journal (for
// example, a file-backed one opened by the CLI). The harness does not
// close it. Without this option, journaled scenarios use an in-memory
// journal scoped to the run.
func WithJournal(j *journal.Journal) RunOption {
	return func(c *runConfig) {
		c.journal = j
	}
}

// Run executes a scenario and returns its report.
//
// The harness builds one canonical domain, one router, and one counter,
// then launches every origin's workers concurrently and waits for all
// calls to return. Any worker error aborts with that error; a report is
// returned only when every call completed.
func Run(s *Scenario, opts ...RunOption) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cfg := runConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	canonical := domain.NewLoop("canonical", domain.WithLogger(cfg.logger))
	defer func() {
		canonical.Close()
		canonical.Wait()
	}()

	router := affinity.New(canonical)

	jour := cfg.journal
	if jour == nil && s.Journal {
		var err error
		jour, err = journal.OpenMemory(journal.WithLogger(cfg.logger))
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", s.Name, err)
		}
		defer jour.Close()
	}

	ctrOpts := []counter.Option{}
	if jour != nil && !s.Unsynchronized {
		ctrOpts = append(ctrOpts, counter.WithJournal(jour))
	}
	ctr := counter.New(router, ctrOpts...)

	cfg.logger.Info("running scenario",
		"scenario", s.Name,
		"origins", len(s.Origins),
		"expected", s.Expected(),
		"unsynchronized", s.Unsynchronized)

	if err := runOrigins(s, ctr, jour); err != nil {
		return nil, fmt.Errorf("run %q: %w", s.Name, err)
	}

	ctx := context.Background()
	if jour != nil {
		if err := jour.Flush(ctx); err != nil {
			return nil, fmt.Errorf("run %q: %w", s.Name, err)
		}
	}

	return buildReport(ctx, s, ctr, router, jour)
}

// runOrigins launches all workers and waits for them.
func runOrigins(s *Scenario, ctr *counter.Counter, jour *journal.Journal) error {
	ctx := context.Background()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	for _, origin := range s.Origins {
		for w := 0; w < origin.Workers; w++ {
			wg.Add(1)
			go func(o Origin) {
				defer wg.Done()
				if err := runWorker(ctx, s, o, ctr, jour); err != nil {
					select {
					case errCh <- err:
					default:
					}
				}
			}(origin)
		}
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// runWorker performs one worker's increments.
func runWorker(ctx context.Context, s *Scenario, o Origin, ctr *counter.Counter, jour *journal.Journal) error {
	for i := 0; i < o.Iterations; i++ {
		var err error
		switch o.kind() {
		case OriginStorage:
			// The increment is issued from inside the writer gate's own
			// transaction context. The gate's serialization domain is
			// not the canonical domain, so the routed call still takes
			// the slow path; skipping the router here is exactly the
			// race the baseline demonstrates.
			err = jour.Write(ctx, func(gateCtx context.Context, _ *sql.Tx) error {
				if s.Unsynchronized {
					ctr.IncrementUnsynced()
					return nil
				}
				return ctr.Increment(gateCtx, o.Name)
			})
		default:
			if s.Unsynchronized {
				ctr.IncrementUnsynced()
			} else {
				err = ctr.Increment(ctx, o.Name)
			}
		}
		if err != nil {
			return fmt.Errorf("origin %q: %w", o.Name, err)
		}
	}
	return nil
}

// buildReport collects the run's observable outcomes.
func buildReport(ctx context.Context, s *Scenario, ctr *counter.Counter, router *affinity.Router, jour *journal.Journal) (*Report, error) {
	var final int64
	if s.Unsynchronized {
		final = ctr.ValueUnsynced()
	} else {
		var err error
		final, err = ctr.Value(ctx)
		if err != nil {
			return nil, fmt.Errorf("read final value: %w", err)
		}
	}

	r := &Report{
		Scenario:       s.Name,
		Unsynchronized: s.Unsynchronized,
		Expected:       s.Expected(),
		Final:          final,
		Lost:           s.Expected() - final,
		Submissions:    router.SubmissionCount(),
	}

	for _, o := range s.Origins {
		r.Origins = append(r.Origins, OriginResult{
			Name:       o.Name,
			Kind:       string(o.kind()),
			Workers:    o.Workers,
			Iterations: o.Iterations,
			Calls:      o.Calls(),
		})
	}

	if jour != nil {
		rows, err := jour.MutationCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("count journal rows: %w", err)
		}
		r.Journaled = true
		r.JournalRows = rows
	}

	return r, nil
}
