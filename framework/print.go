package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// PrintResults writes a summary of a finished run: the environment phases, every failed test with
// its errors, tests that never ran, and the overall verdict.
func PrintResults(out io.Writer, results Results) {
	passed, skipped := 0, 0
	for _, t := range results.Tests {
		switch {
		case t.Skipped:
			skipped++
		case t.Passed():
			passed++
		}
	}

	for _, p := range []*PhaseResult{results.Setup, results.Teardown} {
		if p != nil && p.Err != nil {
			fmt.Fprintf(out, "%s failed: %s\n", p.Name, indentLines(p.Err.Error(), "  "))
		}
	}

	if len(results.Failures) > 0 {
		fmt.Fprintln(out, "FAILED TESTS:")
		for _, f := range results.Failures {
			fmt.Fprintf(out, "* %s (failed in %s)\n", f.TestID, f.FailedStage)
			for _, e := range f.Errors {
				fmt.Fprintf(out, "    %s\n", indentLines(e.Error(), "    "))
			}
		}
	}

	if len(results.NotRun) > 0 {
		fmt.Fprintln(out, "NOT RUN:")
		for _, id := range results.NotRun {
			fmt.Fprintf(out, "* %s\n", id)
		}
	}

	fmt.Fprintf(out, "%d passed, %d failed, %d skipped, %d not run\n",
		passed, len(results.Failures), skipped, len(results.NotRun))
	if results.OK() {
		fmt.Fprintln(out, color.GreenString("All tests passed"))
	} else {
		fmt.Fprintln(out, color.RedString("Test run FAILED"))
	}
}

func indentLines(s, prefix string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n"+prefix)
}
