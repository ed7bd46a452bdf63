// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of tests. The base package contains shared
// types such as Logger, TestID and Results; other components are in the subpackages
// harness and ldtest.
//
// The general model is:
//
// 1. The test harness drives a service under test through its public HTTP API, using a
// stateful client (harness.Client) that keeps session cookies between calls.
//
// 2. There is a general notion of a test scope which is similar to Go's testing.T,
// allowing pieces of test logic to be associated with a test identifier, to keep state
// between the setup, run and teardown stages, and to accumulate success/failure results.
//
// 3. A runner (ldtest.Runner) sequences an ordered list of tests between an
// environment-wide setup and teardown, and produces Results.
//
// The domain-specific code that knows what is being tested is responsible for providing
// the environment (fixtures, store hooks) and the tests themselves.
package framework
