package framework

import (
	"strings"
	"time"
)

// Stage identifies the part of a test's lifecycle in which something happened.
type Stage string

const (
	StageCreated  Stage = "created"
	StageSetup    Stage = "setup"
	StageRun      Stage = "run"
	StageTeardown Stage = "teardown"
)

// Results is the report produced by a test run.
type Results struct {
	// Setup and Teardown describe the environment-wide phases. They are nil if the phase was not
	// requested.
	Setup    *PhaseResult
	Teardown *PhaseResult

	// Tests contains one entry per test that was started or skipped, in execution order.
	Tests []TestResult

	// Failures is the subset of Tests that failed.
	Failures []TestResult

	// NotRun lists tests that were never started because the run stopped early.
	NotRun []TestID
}

// PhaseResult is the outcome of an environment-wide setup or teardown.
type PhaseResult struct {
	Name    string
	Elapsed time.Duration
	Err     error
}

func (p *PhaseResult) OK() bool {
	return p == nil || p.Err == nil
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool

	// SkipReason is set only if Skipped is true.
	SkipReason string

	// FailedStage is the lifecycle stage in which the test first failed, or "" if it passed.
	FailedStage Stage

	// Fatal is true if the failure was caused by a harness-level error (such as a transport
	// failure) that makes it unsafe to continue the run.
	Fatal bool

	Elapsed time.Duration
	Output  CapturedOutput
}

func (r TestResult) Passed() bool {
	return !r.Skipped && r.FailedStage == ""
}

func (r Results) OK() bool {
	return r.Setup.OK() && r.Teardown.OK() && len(r.Failures) == 0 && len(r.NotRun) == 0
}

// Find returns the result for the test with the given name, if it was started or skipped.
func (r Results) Find(name string) (TestResult, bool) {
	for _, t := range r.Tests {
		if t.TestID.String() == name {
			return t, true
		}
	}
	return TestResult{}, false
}

type TestID struct {
	Path []string

	// Phase is set for the whole-run install and uninstall steps, which are reported like tests
	// but are not counted as tests.
	Phase bool
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}
