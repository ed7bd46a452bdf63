package harness

import (
	"encoding/json"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	successKey = "success"
	errorKey   = "error"
)

// Response is the decoded JSON body of a service call. The service reports the outcome of every
// call with either a "success" or an "error" property; any payload is keyed by a domain noun such
// as "user" or "post".
type Response struct {
	Endpoint   string
	StatusCode int
	Value      ldvalue.Value
	raw        string
}

func (r Response) String() string { return r.raw }

// Has reports whether the top-level object has a property with the given name.
func (r Response) Has(key string) bool {
	if r.Value.Type() != ldvalue.ObjectType {
		return false
	}
	for _, k := range r.Value.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a top-level property, or a null value if there is none.
func (r Response) Get(key string) ldvalue.Value {
	return r.Value.GetByKey(key)
}

// Success is true if the response carries a success indicator.
func (r Response) Success() bool {
	return r.Has(successKey)
}

// ErrorMessage returns the service's error message and true if the response carries an error
// indicator.
func (r Response) ErrorMessage() (string, bool) {
	if !r.Has(errorKey) {
		return "", false
	}
	v := r.Get(errorKey)
	if v.Type() == ldvalue.StringType {
		return v.StringValue(), true
	}
	return v.JSONString(), true
}

// Decode unmarshals the property with the given name into dest.
func (r Response) Decode(key string, dest interface{}) error {
	if !r.Has(key) {
		return fmt.Errorf("response from %q has no %q property: %s", r.Endpoint, key, r.raw)
	}
	if err := json.Unmarshal([]byte(r.Get(key).JSONString()), dest); err != nil {
		return fmt.Errorf("malformed %q property in response from %q: %w", key, r.Endpoint, err)
	}
	return nil
}
