package ldtest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/ryffproject/api-contract-tests/framework"
)

// T represents a single test as it moves through its setup, run and teardown stages.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner. To make test assertions, you can use the assert and require
// packages, passing the *T as if it were a *testing.T: require.* stops the current stage
// immediately, assert.* records a failure and carries on.
//
// A T also owns a State that the stages use to hand fixtures to each other, and a capturing
// debug logger whose output is attached to the test's result.
type T struct {
	id          framework.TestID
	ctx         context.Context
	context     interface{}
	debugLogger framework.CapturingLogger
	testLogger  framework.TestLogger
	state       State
	stage       framework.Stage
	failed      bool
	failedStage framework.Stage
	fatal       bool
	skipped     bool
	skipReason  string
	errors      []error
}

func newT(ctx context.Context, id framework.TestID, domainContext interface{}, testLogger framework.TestLogger) *T {
	return &T{
		id:         id,
		ctx:        ctx,
		context:    domainContext,
		testLogger: testLogger,
		state:      State{},
		stage:      framework.StageCreated,
	}
}

func (t *T) ID() framework.TestID {
	return t.id
}

// Context returns the domain-specific value that was given to the Runner, such as the environment
// that holds fixtures and the API client.
func (t *T) Context() interface{} {
	return t.context
}

// Ctx returns the context.Context of the run, for use with blocking calls.
func (t *T) Ctx() context.Context {
	return t.ctx
}

// State returns the key/value store shared by this test's stages.
func (t *T) State() State {
	return t.state
}

func (t *T) Failed() bool {
	return t.failed
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.fail(fmt.Errorf(format, args...))
}

// FailNow is called by assertions when a test should fail and immediately exit the current stage.
// The methods in the require package call FailNow.
func (t *T) FailNow() {
	panic(t)
}

// Fatal records err as a failure and exits the current stage. If err reports itself as fatal (a
// transport failure or a malformed response), the runner will not start any further tests.
func (t *T) Fatal(err error) {
	if isFatal(err) {
		t.fatal = true
	}
	t.fail(err)
	t.FailNow()
}

// Helper exists so that testify can treat T like a *testing.T.
func (t *T) Helper() {}

func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

func (t *T) fail(err error) {
	t.failed = true
	if t.failedStage == "" {
		t.failedStage = t.stage
	}
	t.errors = append(t.errors, err)
	t.testLogger.TestError(t.id, err)
}

func (t *T) runStage(stage framework.Stage, action func(*T)) {
	t.stage = stage
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*T); ok {
				if t.skipped || t.failed {
					return
				}
				t.fail(errors.New("test failed with no failure message"))
				return
			}
			t.fail(fmt.Errorf("unexpected panic in %s: %+v\n%s", stage, r, string(debug.Stack())))
		}
	}()
	action(t)
}

func (t *T) result() framework.TestResult {
	return framework.TestResult{
		TestID:      t.id,
		Errors:      t.errors,
		Skipped:     t.skipped && !t.failed,
		SkipReason:  t.skipReason,
		FailedStage: t.failedStage,
		Fatal:       t.fatal,
		Output:      t.debugLogger.Output(),
	}
}

func isFatal(err error) bool {
	var f interface{ Fatal() bool }
	return errors.As(err, &f) && f.Fatal()
}
