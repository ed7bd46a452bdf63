package fixtures

import (
	"errors"
	"fmt"
)

var (
	// ErrFixtureExhausted means no new unique token could be produced within the attempt limit.
	ErrFixtureExhausted = errors.New("unique fixture tokens exhausted")

	// ErrFixtureCreationFailed means the service rejected a synthetic object.
	ErrFixtureCreationFailed = errors.New("fixture creation failed")
)

// FixtureCreationError describes a fixture the service refused to create. A failure here points at
// the harness's own data rather than at the behavior being tested.
type FixtureCreationError struct {
	Kind    string
	Message string
	Err     error
}

func (e *FixtureCreationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: could not create %s: %s", ErrFixtureCreationFailed, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: could not create %s: service said %q", ErrFixtureCreationFailed, e.Kind, e.Message)
}

func (e *FixtureCreationError) Is(target error) bool {
	return target == ErrFixtureCreationFailed
}

func (e *FixtureCreationError) Unwrap() error { return e.Err }
