package harness

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awray/strand/internal/testutil"
)

// goldenScenario is small enough to run on every test invocation but
// still mixes both originating contexts.
func goldenScenario() *Scenario {
	return &Scenario{
		Name:        "golden_small",
		Description: "mixed-origin synchronized run with deterministic report",
		Journal:     true,
		Origins: []Origin{
			{Name: "task-executor", Kind: OriginTask, Workers: 2, Iterations: 100},
			{Name: "storage-writer", Kind: OriginStorage, Workers: 1, Iterations: 100},
		},
	}
}

func TestGolden_SmallMixedScenario(t *testing.T) {
	prev := slog.Default()
	slog.SetDefault(testutil.DiscardLogger())
	defer slog.SetDefault(prev)

	report, err := RunWithGolden(t, goldenScenario())
	require.NoError(t, err)

	assert.True(t, report.Serialized())
	require.NoError(t, VerifyReport(report))
}

func TestGolden_ReportRenderStable(t *testing.T) {
	// Render is a golden contract: lock the exact shape down without
	// running anything.
	r := &Report{
		Scenario: "shape",
		Origins: []OriginResult{
			{Name: "a", Kind: "task", Workers: 1, Iterations: 2, Calls: 2},
		},
		Expected:    2,
		Final:       2,
		Lost:        0,
		Submissions: 3,
		Journaled:   true,
		JournalRows: 2,
	}

	want := "scenario: shape\n" +
		"mode: synchronized\n" +
		"origin a: kind=task workers=1 iterations=2 calls=2\n" +
		"expected: 2\n" +
		"final: 2\n" +
		"lost: 0\n" +
		"submissions: 3\n" +
		"journal rows: 2\n" +
		"serialized: true\n"
	assert.Equal(t, want, r.Render())
}
