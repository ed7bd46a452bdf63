package harness

import (
	"errors"
	"fmt"
)

// TransportError means an HTTP round-trip to the service could not be completed. The client never
// retries; it is up to the caller whether to try again.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unable to complete HTTP request to %q: %s", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Fatal() bool { return true }

// InvalidResponseError means the service returned something that was not well-formed JSON.
type InvalidResponseError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid JSON from %q (HTTP %d): %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

func (e *InvalidResponseError) Fatal() bool { return true }

// IsFatal reports whether any error in err's chain declares itself fatal, meaning that no state after
// it can be assumed safe to continue from.
func IsFatal(err error) bool {
	var f interface{ Fatal() bool }
	return errors.As(err, &f) && f.Fatal()
}

// UploadError means a file given for upload exists but could not be read.
type UploadError struct {
	Field string
	Path  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("can't upload %q as %q: %s", e.Path, e.Field, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Fatal() bool { return true }
