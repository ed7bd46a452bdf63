package apitests

import (
	"net/url"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryffproject/api-contract-tests/fixtures"
	"github.com/ryffproject/api-contract-tests/framework/ldtest"
	"github.com/ryffproject/api-contract-tests/servicedef"
)

func createUserTest() ldtest.Test {
	return ldtest.Define("create user", ldtest.Definition{
		Run: func(t *ldtest.T) {
			env := requireEnv(t)
			username, err := env.Words.UniqueWord()
			if err != nil {
				t.Fatal(err)
			}
			emailUser, err := env.Words.UniqueWord()
			if err != nil {
				t.Fatal(err)
			}
			fields := url.Values{
				servicedef.FieldUsername:  {username},
				servicedef.FieldPassword:  {fixtures.Password},
				servicedef.FieldName:      {env.Words.Words(2)},
				servicedef.FieldEmail:     {emailUser + "@example.com"},
				servicedef.FieldBio:       {env.Words.Words(10)},
				servicedef.FieldLatitude:  {"50"},
				servicedef.FieldLongitude: {"50"},
			}
			files := map[string]string{}
			if len(env.Media.Avatars) > 0 {
				files[servicedef.FieldAvatar] = env.Media.Avatars[0]
			}

			resp := callAPIWithFiles(t, servicedef.EndpointCreateUser, fields, files)
			requireSuccess(t, resp, "Failed to create user")
			var created servicedef.User
			require.NoError(t, resp.Decode(servicedef.KeyUser, &created))
			created.Password = fixtures.Password
			t.State().Set(stateUser, created)
			assert.Equal(t, username, created.Username)

			got := callAPI(t, servicedef.EndpointGetUser, idField(created.ID))
			requireSuccess(t, got, "Failed to get user after creation")
			assert.Equal(t, username, got.Get(servicedef.KeyUser).GetByKey("username").StringValue())
		},
		Teardown: deleteStateUsers(stateUser),
	})
}

func loginTest() ldtest.Test {
	return ldtest.Define("login", ldtest.Definition{
		Setup: makeStateUsers(true, stateUser),
		Run: func(t *ldtest.T) {
			user := ldtest.RequireState[servicedef.User](t, stateUser)
			logIn(t, user)

			got := callAPI(t, servicedef.EndpointGetUser, idField(user.ID))
			requireSuccess(t, got, "Failed to get user after login")
			assert.Equal(t, user.ID, got.Get(servicedef.KeyUser).GetByKey("id").IntValue())
		},
		Teardown: deleteStateUsers(stateUser),
	})
}

func logoutTest() ldtest.Test {
	return ldtest.Define("logout", ldtest.Definition{
		Setup: makeStateUsers(true, stateUser),
		Run: func(t *ldtest.T) {
			user := ldtest.RequireState[servicedef.User](t, stateUser)
			logIn(t, user)

			requireSuccess(t, callAPI(t, servicedef.EndpointLogout, nil), "Failed to log user out")

			got := callAPI(t, servicedef.EndpointGetUser, idField(user.ID))
			assert.False(t, got.Success(), "still logged in after calling logout: %s", got)
		},
		Teardown: deleteStateUsers(stateUser),
	})
}

func fixtureUsersAreDistinctTest() ldtest.Test {
	return ldtest.Define("fixture users are distinct", ldtest.Definition{
		Setup: makeStateUsers(false, stateUser, stateOther),
		Run: func(t *ldtest.T) {
			a := ldtest.RequireState[servicedef.User](t, stateUser)
			b := ldtest.RequireState[servicedef.User](t, stateOther)
			assert.NotEqual(t, a.ID, b.ID)
			assert.NotEqual(t, a.Username, b.Username)
			assert.NotEqual(t, a.Email, b.Email)

			logIn(t, a)
			for _, user := range []servicedef.User{a, b} {
				resp := callAPI(t, servicedef.EndpointGetUser, idField(user.ID))
				requireSuccess(t, resp, "Failed to get fixture user "+user.Username)
				assert.Equal(t, user.Username, resp.Get(servicedef.KeyUser).GetByKey("username").StringValue())
			}
		},
		Teardown: deleteStateUsers(stateUser, stateOther),
	})
}
