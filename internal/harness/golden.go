package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares the rendered report
// against the golden file testdata/golden/{scenario.Name}.golden.
//
// Only synchronized scenarios are golden-comparable: every field of
// their report is deterministic. To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) (*Report, error) {
	t.Helper()

	report, err := Run(s)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, []byte(report.Render()))

	return report, nil
}
