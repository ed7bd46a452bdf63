package mockservice

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryffproject/api-contract-tests/framework/harness"
	"github.com/ryffproject/api-contract-tests/servicedef"
)

func withService(t *testing.T, mediaRoot string, action func(*Service, *harness.Client)) {
	s := New(mediaRoot, nil)
	httphelpers.WithServer(s, func(server *httptest.Server) {
		action(s, harness.NewClient(harness.ClientConfig{BaseURL: server.URL, EndpointSuffix: ".php"}, nil))
	})
}

func call(t *testing.T, c *harness.Client, endpoint string, fields url.Values) harness.Response {
	t.Helper()
	resp, err := c.Call(context.Background(), endpoint, fields, nil)
	require.NoError(t, err)
	return resp
}

func createUser(t *testing.T, c *harness.Client, username string) servicedef.User {
	t.Helper()
	resp := call(t, c, servicedef.EndpointCreateUser, url.Values{
		servicedef.FieldUsername: {username},
		servicedef.FieldPassword: {"pw"},
		servicedef.FieldEmail:    {username + "@example.com"},
	})
	require.True(t, resp.Success(), "response was %s", resp)
	var u servicedef.User
	require.NoError(t, resp.Decode(servicedef.KeyUser, &u))
	return u
}

func TestCreateUserLogsIn(t *testing.T) {
	withService(t, "", func(s *Service, c *harness.Client) {
		u := createUser(t, c, "alice")
		resp := call(t, c, servicedef.EndpointGetUser, nil)
		require.True(t, resp.Success())
		assert.Equal(t, "alice", resp.Get(servicedef.KeyUser).GetByKey("username").StringValue())
		assert.Equal(t, u.ID, resp.Get(servicedef.KeyUser).GetByKey("id").IntValue())
		assert.Equal(t, 1, s.UserCount())
	})
}

func TestCreateUserFromPlainForm(t *testing.T) {
	mediaRoot := t.TempDir()
	s := New(mediaRoot, nil)
	httphelpers.WithServer(s, func(server *httptest.Server) {
		form := url.Values{
			servicedef.FieldUsername: {"alice"},
			servicedef.FieldPassword: {"pw"},
			servicedef.FieldEmail:    {"alice@example.com"},
		}
		resp, err := http.Post(server.URL+"/create-user.php", "application/x-www-form-urlencoded",
			strings.NewReader(form.Encode()))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Contains(t, string(body), `"success"`)
		assert.NotContains(t, string(body), `"error"`)
		assert.Equal(t, 1, s.UserCount())
		assert.NoDirExists(t, filepath.Join(mediaRoot, "avatars"))
	})
}

func TestDuplicateUsernameIsRejected(t *testing.T) {
	withService(t, "", func(_ *Service, c *harness.Client) {
		createUser(t, c, "alice")
		resp := call(t, c, servicedef.EndpointCreateUser, url.Values{
			servicedef.FieldUsername: {"alice"},
			servicedef.FieldPassword: {"pw"},
			servicedef.FieldEmail:    {"other@example.com"},
		})
		message, isError := resp.ErrorMessage()
		assert.True(t, isError)
		assert.Equal(t, "Username already taken.", message)
	})
}

func TestLogoutEndsSession(t *testing.T) {
	withService(t, "", func(_ *Service, c *harness.Client) {
		u := createUser(t, c, "alice")
		require.True(t, call(t, c, servicedef.EndpointLogout, nil).Success())
		resp := call(t, c, servicedef.EndpointGetUser, url.Values{servicedef.FieldID: {strconv.Itoa(u.ID)}})
		assert.False(t, resp.Success())
	})
}

func TestAuthFieldsWorkWithoutSession(t *testing.T) {
	withService(t, "", func(_ *Service, c *harness.Client) {
		createUser(t, c, "alice")
		other := c.NewSession()
		resp := call(t, other, servicedef.EndpointGetUser, url.Values{
			servicedef.FieldAuthUsername: {"alice"},
			servicedef.FieldAuthPassword: {"pw"},
		})
		assert.True(t, resp.Success(), "response was %s", resp)
	})
}

func TestPostLifecycle(t *testing.T) {
	withService(t, "", func(_ *Service, c *harness.Client) {
		createUser(t, c, "alice")

		empty := call(t, c, servicedef.EndpointAddPost, url.Values{servicedef.FieldContent: {"   "}})
		message, _ := empty.ErrorMessage()
		assert.Equal(t, "No post to add!", message)

		added := call(t, c, servicedef.EndpointAddPost, url.Values{servicedef.FieldContent: {"hello #tunes"}})
		require.True(t, added.Success())
		var p servicedef.Post
		require.NoError(t, added.Decode(servicedef.KeyPost, &p))
		assert.Equal(t, 1, p.Upvotes)

		id := url.Values{servicedef.FieldID: {strconv.Itoa(p.ID)}}
		unvoted := call(t, c, servicedef.EndpointDeleteUpvote, id)
		require.True(t, unvoted.Success())
		assert.Equal(t, 0, unvoted.Get(servicedef.KeyPost).GetByKey("upvotes").IntValue())

		require.True(t, call(t, c, servicedef.EndpointDeletePost, id).Success())
		assert.False(t, call(t, c, servicedef.EndpointGetPost, id).Success())
		assert.False(t, call(t, c, servicedef.EndpointDeletePost, id).Success())
	})
}

func TestTrendingSearchByTag(t *testing.T) {
	withService(t, "", func(_ *Service, c *harness.Client) {
		createUser(t, c, "alice")
		call(t, c, servicedef.EndpointAddPost, url.Values{servicedef.FieldContent: {"one #jazz"}})
		call(t, c, servicedef.EndpointAddPost, url.Values{servicedef.FieldContent: {"two #rock"}})

		resp := call(t, c, servicedef.EndpointSearchPostsTrending, url.Values{servicedef.FieldTags: {"jazz"}})
		require.True(t, resp.Success())
		var posts []servicedef.Post
		require.NoError(t, resp.Decode(servicedef.KeyPosts, &posts))
		require.Len(t, posts, 1)
		assert.Equal(t, "one #jazz", posts[0].Content)
	})
}

func TestConversationNeedsAnotherUser(t *testing.T) {
	withService(t, "", func(_ *Service, c *harness.Client) {
		bob := createUser(t, c, "bob")
		createUser(t, c, "alice")

		assert.False(t, call(t, c, servicedef.EndpointAddConversation, url.Values{servicedef.FieldIDs: {""}}).Success())
		assert.True(t, call(t, c, servicedef.EndpointAddConversation,
			url.Values{servicedef.FieldIDs: {strconv.Itoa(bob.ID)}}).Success())
	})
}

func TestAPNsTokenIsValidated(t *testing.T) {
	withService(t, "", func(s *Service, c *harness.Client) {
		u := createUser(t, c, "alice")
		assert.False(t, call(t, c, servicedef.EndpointAddAPNsToken, url.Values{
			servicedef.FieldToken: {"short"}, servicedef.FieldUUID: {strings.Repeat("0", 36)},
		}).Success())
		assert.True(t, call(t, c, servicedef.EndpointAddAPNsToken, url.Values{
			servicedef.FieldToken: {strings.Repeat("0", 64)}, servicedef.FieldUUID: {strings.Repeat("0", 36)},
		}).Success())
		assert.Len(t, s.APNsTokens(u.ID), 1)
	})
}

func TestUploadsAreWrittenUnderMediaRoot(t *testing.T) {
	root := t.TempDir()
	avatar := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(avatar, []byte("png"), 0o600))

	withService(t, root, func(_ *Service, c *harness.Client) {
		resp, err := c.Call(context.Background(), servicedef.EndpointCreateUser, url.Values{
			servicedef.FieldUsername: {"alice"},
			servicedef.FieldPassword: {"pw"},
			servicedef.FieldEmail:    {"alice@example.com"},
		}, map[string]string{servicedef.FieldAvatar: avatar})
		require.NoError(t, err)
		require.True(t, resp.Success(), "response was %s", resp)

		matches, err := filepath.Glob(filepath.Join(root, "avatars", "*.png"))
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})
}

func TestResetForgetsEverything(t *testing.T) {
	withService(t, "", func(s *Service, c *harness.Client) {
		createUser(t, c, "alice")
		s.Reset()
		assert.Equal(t, 0, s.UserCount())
		assert.False(t, call(t, c, servicedef.EndpointGetUser, nil).Success())
	})
}

func TestUnknownEndpoint(t *testing.T) {
	withService(t, "", func(_ *Service, c *harness.Client) {
		resp := call(t, c, "no-such-thing", nil)
		assert.False(t, resp.Success())
	})
}
