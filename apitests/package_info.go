// Package apitests contains the contract tests for the social-network API, and the Environment
// that those tests share: the API client, the fixture factory, and the hooks that install and
// uninstall the test database.
//
// Each test is an ldtest.Test. Fixtures are created in Setup through the service's own endpoints,
// passed to Run through the test's State, and deleted again in Teardown.
package apitests
