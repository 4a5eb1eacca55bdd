package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OriginKind selects how an origin's workers reach the counter.
type OriginKind string

const (
	// OriginTask workers call the counter from plain goroutines,
	// standing in for the application task executor.
	OriginTask OriginKind = "task"

	// OriginStorage workers call the counter from inside a journal
	// write transaction, i.e. from the writer gate's serial context.
	OriginStorage OriginKind = "storage"
)

// Origin is one independent source of concurrent counter mutations.
type Origin struct {
	// Name labels the origin in reports and journal rows.
	Name string `yaml:"name"`

	// Kind is "task" (default) or "storage".
	Kind OriginKind `yaml:"kind,omitempty"`

	// Workers is the number of concurrent callers for this origin.
	Workers int `yaml:"workers"`

	// Iterations is the number of increments per worker.
	Iterations int `yaml:"iterations"`
}

// Calls returns the total number of increments this origin performs.
func (o Origin) Calls() int64 {
	return int64(o.Workers) * int64(o.Iterations)
}

// Scenario defines one race experiment.
type Scenario struct {
	// Name uniquely identifies the scenario (also the golden file name).
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description,omitempty"`

	// Unsynchronized switches workers to the racy baseline increment.
	// The final value is then non-deterministic and usually short.
	Unsynchronized bool `yaml:"unsynchronized,omitempty"`

	// Journal enables the mutation journal (and the writer gate).
	// Required when any origin has kind storage.
	Journal bool `yaml:"journal,omitempty"`

	// Origins lists the concurrent mutation sources, in report order.
	Origins []Origin `yaml:"origins"`
}

// Expected returns the total number of increments across all origins.
func (s *Scenario) Expected() int64 {
	var total int64
	for _, o := range s.Origins {
		total += o.Calls()
	}
	return total
}

// Validate checks the scenario for structural errors.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario: name is required")
	}
	if len(s.Origins) == 0 {
		return fmt.Errorf("scenario %q: at least one origin is required", s.Name)
	}

	seen := make(map[string]bool, len(s.Origins))
	for i, o := range s.Origins {
		if o.Name == "" {
			return fmt.Errorf("scenario %q: origin %d: name is required", s.Name, i)
		}
		if seen[o.Name] {
			return fmt.Errorf("scenario %q: duplicate origin %q", s.Name, o.Name)
		}
		seen[o.Name] = true

		switch o.Kind {
		case "", OriginTask, OriginStorage:
		default:
			return fmt.Errorf("scenario %q: origin %q: unknown kind %q", s.Name, o.Name, o.Kind)
		}
		if o.Kind == OriginStorage && !s.Journal {
			return fmt.Errorf("scenario %q: origin %q: kind storage requires journal: true", s.Name, o.Name)
		}
		if o.Workers < 1 {
			return fmt.Errorf("scenario %q: origin %q: workers must be >= 1", s.Name, o.Name)
		}
		if o.Iterations < 0 {
			return fmt.Errorf("scenario %q: origin %q: iterations must be >= 0", s.Name, o.Name)
		}
	}

	return nil
}

// kind returns the origin's kind with the default applied.
func (o Origin) kind() OriginKind {
	if o.Kind == "" {
		return OriginTask
	}
	return o.Kind
}

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultScenario is the two-origin scenario from the demo: two
// independent contexts each incrementing the counter 100,000 times.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:        "dual_origin",
		Description: "task-executor and storage-writer callers interleaved",
		Journal:     true,
		Origins: []Origin{
			{Name: "task-executor", Kind: OriginTask, Workers: 1, Iterations: 100000},
			{Name: "storage-writer", Kind: OriginStorage, Workers: 1, Iterations: 100000},
		},
	}
}
