package ldtest

// State is the scoped key/value store of a single test. It is created empty for each test and
// discarded when the test finishes.
type State map[string]interface{}

func (s State) Set(key string, value interface{}) {
	s[key] = value
}

func (s State) Get(key string) (interface{}, bool) {
	v, ok := s[key]
	return v, ok
}

func (s State) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// StateValue returns the value stored under key if it exists and has type V.
func StateValue[V any](t *T, key string) (V, bool) {
	var zero V
	v, ok := t.state[key]
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}

// RequireState is like StateValue but fails the current stage if the value is missing or has the
// wrong type.
func RequireState[V any](t *T, key string) V {
	v, ok := StateValue[V](t, key)
	if !ok {
		t.Errorf("test state has no %T value for %q", v, key)
		t.FailNow()
	}
	return v
}
