package framework

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
)

func printToString(results Results) []byte {
	color.NoColor = true
	var buf bytes.Buffer
	PrintResults(&buf, results)
	return buf.Bytes()
}

func TestPrintResultsAllPassed(t *testing.T) {
	results := Results{
		Setup: &PhaseResult{Name: "Installing test database"},
		Tests: []TestResult{
			{TestID: TestID{Path: []string{"login"}}},
			{TestID: TestID{Path: []string{"logout"}}, Skipped: true, SkipReason: "excluded by filter parameters"},
		},
		Teardown: &PhaseResult{Name: "Uninstalling test database"},
	}

	g := goldie.New(t)
	g.Assert(t, "print_all_passed", printToString(results))
}

func TestPrintResultsWithFailures(t *testing.T) {
	failure := TestResult{
		TestID:      TestID{Path: []string{"delete upvote"}},
		FailedStage: StageRun,
		Errors: []error{
			errors.New("upvote count was not updated"),
			errors.New("expected: 0\nactual  : 1"),
		},
	}
	results := Results{
		Setup:    &PhaseResult{Name: "Installing test database"},
		Tests:    []TestResult{{TestID: TestID{Path: []string{"login"}}}, failure},
		Failures: []TestResult{failure},
		NotRun:   []TestID{{Path: []string{"fixture users are distinct"}}},
		Teardown: &PhaseResult{Name: "Uninstalling test database", Err: errors.New("could not drop tables")},
	}

	g := goldie.New(t)
	g.Assert(t, "print_with_failures", printToString(results))
}
