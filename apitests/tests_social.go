package apitests

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ryffproject/api-contract-tests/framework/ldtest"
	"github.com/ryffproject/api-contract-tests/servicedef"
)

const (
	apnsTokenLength  = 64
	deviceUUIDLength = 36
)

func addAPNsTokenTest() ldtest.Test {
	return ldtest.Define("add APNs token", ldtest.Definition{
		Setup: makeStateUsers(true, stateUser),
		Run: func(t *ldtest.T) {
			logIn(t, ldtest.RequireState[servicedef.User](t, stateUser))
			resp := callAPI(t, servicedef.EndpointAddAPNsToken, url.Values{
				servicedef.FieldToken: {strings.Repeat("0", apnsTokenLength)},
				servicedef.FieldUUID:  {strings.Repeat("0", deviceUUIDLength)},
			})
			requireSuccess(t, resp, "Failed to add APNs token")
		},
		Teardown: deleteStateUsers(stateUser),
	})
}

func addFollowTest() ldtest.Test {
	return ldtest.Define("add follow", ldtest.Definition{
		Setup: makeStateUsers(true, stateUser, stateOther),
		Run: func(t *ldtest.T) {
			logIn(t, ldtest.RequireState[servicedef.User](t, stateUser))
			other := ldtest.RequireState[servicedef.User](t, stateOther)
			requireSuccess(t, callAPI(t, servicedef.EndpointAddFollow, idField(other.ID)), "Failed to add follow")
		},
		Teardown: deleteStateUsers(stateUser, stateOther),
	})
}

func addConversationTest() ldtest.Test {
	return ldtest.Define("add conversation", ldtest.Definition{
		Setup: makeStateUsers(true, stateUser, stateOther),
		Run: func(t *ldtest.T) {
			logIn(t, ldtest.RequireState[servicedef.User](t, stateUser))
			other := ldtest.RequireState[servicedef.User](t, stateOther)

			resp := callAPI(t, servicedef.EndpointAddConversation,
				url.Values{servicedef.FieldIDs: {strconv.Itoa(other.ID)}})
			requireSuccess(t, resp, "Failed to add conversation")

			empty := callAPI(t, servicedef.EndpointAddConversation, url.Values{servicedef.FieldIDs: {""}})
			requireErrorResponse(t, empty, "Failed to detect conversation with not enough ids")
		},
		Teardown: deleteStateUsers(stateUser, stateOther),
	})
}
