package apitests

import (
	"net/url"
	"strconv"

	"github.com/stretchr/testify/require"

	"github.com/ryffproject/api-contract-tests/fixtures"
	"github.com/ryffproject/api-contract-tests/framework/harness"
	"github.com/ryffproject/api-contract-tests/framework/ldtest"
	"github.com/ryffproject/api-contract-tests/servicedef"
)

const (
	stateUser  = "user"
	stateOther = "other"
	statePost  = "post"
	stateTag   = "tag"
)

func requireEnv(t *ldtest.T) *Environment {
	if e, ok := t.Context().(*Environment); ok {
		return e
	}
	panic("Environment was not included in the runner configuration!" +
		" This is a basic mistake in the initialization logic.")
}

// apiClient returns the shared test session, logging its traffic into the test's debug output.
func apiClient(t *ldtest.T) *harness.Client {
	return requireEnv(t).Client.WithLogger(t.DebugLogger())
}

func fixtureFactory(t *ldtest.T) *fixtures.Factory {
	return requireEnv(t).Fixtures.WithLogger(t.DebugLogger())
}

func callAPI(t *ldtest.T, endpoint string, fields url.Values) harness.Response {
	return callAPIWithFiles(t, endpoint, fields, nil)
}

func callAPIWithFiles(t *ldtest.T, endpoint string, fields url.Values, files map[string]string) harness.Response {
	resp, err := apiClient(t).Call(t.Ctx(), endpoint, fields, files)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func requireSuccess(t *ldtest.T, resp harness.Response, failure string) {
	if message, isError := resp.ErrorMessage(); isError {
		require.Fail(t, failure, "%s said: %s", resp.Endpoint, message)
	}
	if !resp.Success() {
		require.Fail(t, failure, "%s returned no success indicator: %s", resp.Endpoint, resp)
	}
}

func requireErrorResponse(t *ldtest.T, resp harness.Response, failure string) string {
	message, isError := resp.ErrorMessage()
	if !isError {
		require.Fail(t, failure, "%s returned no error indicator: %s", resp.Endpoint, resp)
	}
	return message
}

func idField(id int) url.Values {
	return url.Values{servicedef.FieldID: {strconv.Itoa(id)}}
}

func logIn(t *ldtest.T, user servicedef.User) {
	resp := callAPI(t, servicedef.EndpointLogin, url.Values{
		servicedef.FieldAuthUsername: {user.Username},
		servicedef.FieldAuthPassword: {user.Password},
	})
	requireSuccess(t, resp, "Failed to log in as "+user.Username)
}

func makeUser(t *ldtest.T, useAvatar bool) servicedef.User {
	user, err := fixtureFactory(t).MakeUser(t.Ctx(), useAvatar)
	if err != nil {
		t.Fatal(err)
	}
	t.Debug("created fixture user %d (%s)", user.ID, user.Username)
	return user
}

func makePost(t *ldtest.T, author servicedef.User, opts fixtures.PostOptions) servicedef.Post {
	post, err := fixtureFactory(t).MakePost(t.Ctx(), author, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Debug("created fixture post %d", post.ID)
	return post
}

// makeStateUsers creates a fixture user for each key and stores it in the test state.
func makeStateUsers(useAvatar bool, keys ...string) func(*ldtest.T) {
	return func(t *ldtest.T) {
		for _, key := range keys {
			t.State().Set(key, makeUser(t, useAvatar))
		}
	}
}

// deleteStateUsers deletes every user that the setup stage stored under the given keys. A user
// that can't be deleted is a leaked fixture, which fails the test.
func deleteStateUsers(keys ...string) func(*ldtest.T) {
	return func(t *ldtest.T) {
		for _, key := range keys {
			user, ok := ldtest.StateValue[servicedef.User](t, key)
			if !ok {
				continue
			}
			if err := fixtureFactory(t).DeleteUser(t.Ctx(), user); err != nil {
				t.Errorf("leaked fixture user %q: %s", user.Username, err)
			}
		}
	}
}
