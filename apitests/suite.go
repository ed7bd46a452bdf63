package apitests

import "github.com/ryffproject/api-contract-tests/framework/ldtest"

// AllTests returns the full suite in the order it runs. Earlier tests cover the endpoints that
// later tests rely on, so under the default policy a broken login stops the run before anything
// that needs to log in.
func AllTests() []ldtest.Test {
	return []ldtest.Test{
		createUserTest(),
		loginTest(),
		logoutTest(),
		addAPNsTokenTest(),
		addConversationTest(),
		addFollowTest(),
		addPostWithoutContentTest(),
		addGetDeletePostTest(),
		deleteUpvoteTest(),
		fixtureUsersAreDistinctTest(),
		taggedPostTrendsTest(),
	}
}
