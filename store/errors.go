package store

import "fmt"

// ScriptError means the database rejected an install or uninstall script. Err is the driver's own
// error, so its message is what the database said.
type ScriptError struct {
	Script string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("error running %s; database said: %s", e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// Fatal is always true: tests cannot run against a store in an unknown state.
func (e *ScriptError) Fatal() bool { return true }
