package ldtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ryffproject/api-contract-tests/framework"
)

// ErrNotInstalled is reported when the environment could not be set up, in which case no tests run.
var ErrNotInstalled = errors.New("database not installed")

const (
	defaultSetupName    = "Installing test database"
	defaultTeardownName = "Uninstalling test database"
)

// Environment is the state shared by every test in a run. Setup must leave it freshly installed
// even if a previous run left it dirty; Teardown must remove everything the run created.
type Environment interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
}

// Policy decides what happens after a test fails.
type Policy int

const (
	// StopOnFailure ends the run at the first failing test; later tests are reported as not run.
	StopOnFailure Policy = iota

	// ContinueOnFailure runs every test regardless of earlier failures, unless a failure was fatal.
	ContinueOnFailure
)

// Runner executes an ordered list of tests one at a time, between an optional environment-wide
// setup and teardown.
type Runner struct {
	Environment Environment
	Tests       []Test

	// Context is made available to every test through T.Context.
	Context interface{}

	// Filter, if set, selects which tests run; the others are reported as skipped.
	Filter framework.Filter

	TestLogger framework.TestLogger
	Policy     Policy

	SetupName    string
	TeardownName string
}

// Run executes the environment setup (if doSetup), the tests, and the environment teardown (if
// doTeardown), and reports the outcome. Tests never run concurrently.
func (r *Runner) Run(ctx context.Context, doSetup, doTeardown bool) framework.Results {
	var results framework.Results
	logger := r.TestLogger
	if logger == nil {
		logger = framework.NullTestLogger()
	}

	if doSetup && r.Environment != nil {
		results.Setup = r.runPhase(ctx, logger, nameOr(r.SetupName, defaultSetupName), r.Environment.Setup)
		if results.Setup.Err != nil {
			results.Setup.Err = fmt.Errorf("%w: %w", ErrNotInstalled, results.Setup.Err)
			for _, test := range r.Tests {
				results.NotRun = append(results.NotRun, testID(test))
			}
			return results
		}
	}

	stopped := false
	for _, test := range r.Tests {
		id := testID(test)
		if !stopped && ctx.Err() != nil {
			stopped = true
		}
		if stopped {
			results.NotRun = append(results.NotRun, id)
			continue
		}
		if r.Filter != nil && !r.Filter(id) {
			reason := "excluded by filter parameters"
			logger.TestSkipped(id, reason)
			results.Tests = append(results.Tests, framework.TestResult{TestID: id, Skipped: true, SkipReason: reason})
			continue
		}

		result := r.runTest(ctx, logger, id, test)
		results.Tests = append(results.Tests, result)
		if result.Skipped || result.Passed() {
			continue
		}
		results.Failures = append(results.Failures, result)
		if r.Policy == StopOnFailure || result.Fatal {
			stopped = true
		}
	}

	if doTeardown && r.Environment != nil {
		results.Teardown = r.runPhase(ctx, logger, nameOr(r.TeardownName, defaultTeardownName), r.Environment.Teardown)
	}
	return results
}

func (r *Runner) runTest(ctx context.Context, logger framework.TestLogger, id framework.TestID, test Test) framework.TestResult {
	logger.TestStarted(id)
	t := newT(ctx, id, r.Context, logger)

	start := time.Now()
	t.runStage(framework.StageSetup, test.Setup)
	if !t.failed && !t.skipped {
		t.runStage(framework.StageRun, test.Run)
	}
	t.runStage(framework.StageTeardown, test.Teardown)
	elapsed := time.Since(start)

	result := t.result()
	result.Elapsed = elapsed
	t.state = nil

	if result.Skipped {
		logger.TestSkipped(id, result.SkipReason)
	} else {
		logger.TestFinished(id, t.failed, elapsed, result.Output)
	}
	return result
}

func (r *Runner) runPhase(
	ctx context.Context,
	logger framework.TestLogger,
	name string,
	action func(context.Context) error,
) *framework.PhaseResult {
	id := framework.TestID{Path: []string{name}, Phase: true}
	logger.TestStarted(id)
	start := time.Now()
	err := action(ctx)
	elapsed := time.Since(start)
	if err != nil {
		logger.TestError(id, err)
	}
	logger.TestFinished(id, err != nil, elapsed, nil)
	return &framework.PhaseResult{Name: name, Elapsed: elapsed, Err: err}
}

func testID(test Test) framework.TestID {
	return framework.TestID{Path: []string{test.Name()}}
}

func nameOr(name, defaultName string) string {
	if name == "" {
		return defaultName
	}
	return name
}
