package harness

import (
	"net/http"
	"strings"
	"sync"
)

// CookieJar remembers the most recent value of every cookie the service has set, and replays all of
// them on each request. Unlike net/http/cookiejar it ignores expiry, path and domain: the service is
// a single origin and "last value wins" is what keeps a login session alive between calls.
type CookieJar struct {
	names  []string
	values map[string]string
	lock   sync.Mutex
}

func NewCookieJar() *CookieJar {
	return &CookieJar{values: make(map[string]string)}
}

// Update merges every Set-Cookie header in h into the jar.
func (j *CookieJar) Update(h http.Header) {
	for _, directive := range h.Values("Set-Cookie") {
		pair := directive
		if i := strings.Index(pair, ";"); i >= 0 {
			pair = pair[:i]
		}
		pair = strings.TrimSpace(pair)
		eq := strings.Index(pair, "=")
		if eq <= 0 {
			continue
		}
		j.Set(pair[:eq], pair[eq+1:])
	}
}

// Set stores a single cookie, replacing any earlier value with the same name.
func (j *CookieJar) Set(name, value string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if _, ok := j.values[name]; !ok {
		j.names = append(j.names, name)
	}
	j.values[name] = name + "=" + value
}

// Header returns the value to send in a Cookie header, or "" if the jar is empty.
func (j *CookieJar) Header() string {
	j.lock.Lock()
	defer j.lock.Unlock()
	pairs := make([]string, 0, len(j.names))
	for _, name := range j.names {
		pairs = append(pairs, j.values[name])
	}
	return strings.Join(pairs, "; ")
}

func (j *CookieJar) Len() int {
	j.lock.Lock()
	defer j.lock.Unlock()
	return len(j.names)
}

// Clear forgets all cookies.
func (j *CookieJar) Clear() {
	j.lock.Lock()
	j.names = nil
	j.values = make(map[string]string)
	j.lock.Unlock()
}
