// Package ldtest provides the test lifecycle: a T that stands in for *testing.T, the Test
// abstraction with its setup, run and teardown stages, and the Runner that sequences a suite
// between an environment-wide setup and teardown.
package ldtest
