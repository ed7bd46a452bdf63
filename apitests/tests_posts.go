package apitests

import (
	"net/url"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryffproject/api-contract-tests/fixtures"
	"github.com/ryffproject/api-contract-tests/framework/ldtest"
	"github.com/ryffproject/api-contract-tests/servicedef"
)

// noPostMessage is what the service says when a post has neither text nor a riff.
const noPostMessage = "No post to add!"

func addPostWithoutContentTest() ldtest.Test {
	return ldtest.Define("add post without content", ldtest.Definition{
		Setup: makeStateUsers(true, stateUser),
		Run: func(t *ldtest.T) {
			logIn(t, ldtest.RequireState[servicedef.User](t, stateUser))
			resp := callAPI(t, servicedef.EndpointAddPost, url.Values{servicedef.FieldContent: {""}})
			message := requireErrorResponse(t, resp, "Post with no content was accepted")
			assert.Equal(t, noPostMessage, message)
		},
		Teardown: deleteStateUsers(stateUser),
	})
}

func addGetDeletePostTest() ldtest.Test {
	return ldtest.Define("add, get and delete post", ldtest.Definition{
		Setup: makeStateUsers(true, stateUser),
		Run: func(t *ldtest.T) {
			user := ldtest.RequireState[servicedef.User](t, stateUser)
			logIn(t, user)
			content := requireEnv(t).Words.Words(10)

			added := callAPI(t, servicedef.EndpointAddPost, url.Values{servicedef.FieldContent: {content}})
			requireSuccess(t, added, "Failed to add post")
			var post servicedef.Post
			require.NoError(t, added.Decode(servicedef.KeyPost, &post))
			assert.Equal(t, user.ID, post.UserID)

			got := callAPI(t, servicedef.EndpointGetPost, idField(post.ID))
			requireSuccess(t, got, "Failed to get post after adding it")
			assert.Equal(t, content, got.Get(servicedef.KeyPost).GetByKey("content").StringValue())

			requireSuccess(t, callAPI(t, servicedef.EndpointDeletePost, idField(post.ID)), "Failed to delete post")

			gone := callAPI(t, servicedef.EndpointGetPost, idField(post.ID))
			requireErrorResponse(t, gone, "Post can still be retrieved after deleting it")
		},
		Teardown: deleteStateUsers(stateUser),
	})
}

// deleteUpvoteTest removes the upvote that every new post gets from its author, then reads the
// post back to check that the count went down to zero.
func deleteUpvoteTest() ldtest.Test {
	return ldtest.Define("delete upvote", ldtest.Definition{
		Setup: func(t *ldtest.T) {
			user := makeUser(t, true)
			t.State().Set(stateUser, user)
			t.State().Set(statePost, makePost(t, user, fixtures.PostOptions{}))
			logIn(t, user)
		},
		Run: func(t *ldtest.T) {
			post := ldtest.RequireState[servicedef.Post](t, statePost)
			resp := callAPI(t, servicedef.EndpointDeleteUpvote, idField(post.ID))
			requireSuccess(t, resp, "Failed to delete upvote")

			got := callAPI(t, servicedef.EndpointGetPost, idField(post.ID))
			requireSuccess(t, got, "Failed to get post after deleting upvote")
			assert.Equal(t, 0, got.Get(servicedef.KeyPost).GetByKey("upvotes").IntValue(),
				"upvote count was not updated")
		},
		Teardown: deleteStateUsers(stateUser),
	})
}

func taggedPostTrendsTest() ldtest.Test {
	return ldtest.Define("tagged post appears in trending search", ldtest.Definition{
		Setup: func(t *ldtest.T) {
			user := makeUser(t, true)
			t.State().Set(stateUser, user)
			tag, err := requireEnv(t).Words.UniqueWord()
			if err != nil {
				t.Fatal(err)
			}
			t.State().Set(stateTag, tag)
			t.State().Set(statePost, makePost(t, user, fixtures.PostOptions{Tags: []string{tag}}))
		},
		Run: func(t *ldtest.T) {
			logIn(t, ldtest.RequireState[servicedef.User](t, stateUser))
			post := ldtest.RequireState[servicedef.Post](t, statePost)
			tag := ldtest.RequireState[string](t, stateTag)

			resp := callAPI(t, servicedef.EndpointSearchPostsTrending, url.Values{servicedef.FieldTags: {tag}})
			requireSuccess(t, resp, "Failed to search trending posts")
			var posts []servicedef.Post
			require.NoError(t, resp.Decode(servicedef.KeyPosts, &posts))

			var ids []int
			for _, p := range posts {
				ids = append(ids, p.ID)
			}
			assert.Contains(t, ids, post.ID, "post tagged #%s is not in the results", tag)
		},
		Teardown: deleteStateUsers(stateUser),
	})
}
