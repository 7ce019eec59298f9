package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gazebo-web/gz-go/v7"
	gztest "github.com/gazebo-web/gz-go/v7/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/bundles/users"
	"github.com/mlx-launcher/mlx/globals"
)

// Tests for library related routes

// addToLibrary adds a game to the library of the user behind the given
// token, and returns the updated user response.
func addToLibrary(t *testing.T, token string, gameID uint) *users.UserResponse {
	in := LibraryAddInput{GameID: gameID}
	b := new(bytes.Buffer)
	json.NewEncoder(b).Encode(in)
	bslice, _ := gztest.AssertRouteMultipleArgs("POST", "/1.0/library", b,
		http.StatusOK, &token, ctJSON, t)
	var ur users.UserResponse
	require.NoError(t, json.Unmarshal(*bslice, &ur), "Unable to unmarshal user response %s", string(*bslice))
	return &ur
}

// getLibrary returns the games in the library of the user behind the given
// token.
func getLibrary(t *testing.T, token string) games.Games {
	bslice, _ := gztest.AssertRouteMultipleArgs("GET", "/1.0/library", nil,
		http.StatusOK, &token, ctJSON, t)
	var gameList games.Games
	require.NoError(t, json.Unmarshal(*bslice, &gameList), "Unable to unmarshal library %s", string(*bslice))
	return gameList
}

// TestLibraryAddAndList grants games to a user and lists them back.
func TestLibraryAddAndList(t *testing.T) {
	setup()
	adminToken := createSysAdminUser(t)
	_, token := createUserAndLogin(t)
	game1 := createTestGame(t, adminToken, "racing rift")
	game2 := createTestGame(t, adminToken, "puzzle harbor")

	// A fresh user owns nothing.
	assert.Len(t, getLibrary(t, token), 0)

	// Grant the games in reverse catalog order.
	ur := addToLibrary(t, token, game2.ID)
	assert.Equal(t, []uint{game2.ID}, ur.Library)
	ur = addToLibrary(t, token, game1.ID)
	// The user response lists ids in grant order.
	assert.Equal(t, []uint{game2.ID, game1.ID}, ur.Library)

	// The library listing follows catalog order instead.
	gameList := getLibrary(t, token)
	require.Len(t, gameList, 2)
	assert.Equal(t, game1.ID, gameList[0].ID)
	assert.Equal(t, game2.ID, gameList[1].ID)

	// Another user's library is not affected.
	_, otherToken := createUserAndLogin(t)
	assert.Len(t, getLibrary(t, otherToken), 0)

	// Games removed from the catalog disappear from libraries.
	uri := fmt.Sprintf("/1.0/admin/games/%d", game2.ID)
	gztest.AssertRouteMultipleArgs("DELETE", uri, nil, http.StatusOK, &adminToken, ctJSON, t)
	gameList = getLibrary(t, token)
	require.Len(t, gameList, 1)
	assert.Equal(t, game1.ID, gameList[0].ID)
}

// TestLibraryAddDbMock tests the POST /library route against DB failures.
func TestLibraryAddDbMock(t *testing.T) {
	// General test setup
	setup()

	origDb := globals.Server.Db
	// Make sure to return back to real DB after running this test
	defer SetGlobalDB(origDb)

	// Setup DB mock
	mockDb := SetupDbMockCatcher()
	SetGlobalDB(mockDb)
	SetupCommonMockResponses("test-user")

	uri := "/1.0/library"
	myJWT := createValidJWTForIdentity("test-user-identity", t)
	body := func() *bytes.Buffer {
		b := new(bytes.Buffer)
		json.NewEncoder(b).Encode(LibraryAddInput{GameID: 100})
		return b
	}

	// Test bad connection at Begin() tx
	SetGlobalDB(NewFailAtBeginConn())
	expErr := gz.ErrorMessage(gz.ErrorNoDatabase)
	bslice, _ := gztest.AssertRouteMultipleArgs("POST", uri, body(), expErr.StatusCode, &myJWT, ctTextPlain, t)
	gztest.AssertBackendErrorCode("TestLibraryAddDbMock", bslice, expErr.ErrCode, t)

	// Test failure at TX commit
	SetGlobalDB(mockDb)
	SetupMockBadCommit()
	defer ClearMockBadCommit()
	expErr = gz.ErrorMessage(gz.ErrorDbSave)
	bslice, _ = gztest.AssertRouteMultipleArgs("POST", uri, body(), expErr.StatusCode, &myJWT, ctTextPlain, t)
	gztest.AssertBackendErrorCode("TestLibraryAddDbMock", bslice, expErr.ErrCode, t)
}

// libraryAddTest includes the input and expected output of a library add
// test case.
type libraryAddTest struct {
	uriTest
	gameID uint
}

// TestLibraryAddErrors tests the error cases of the POST /library route.
func TestLibraryAddErrors(t *testing.T) {
	setup()
	adminToken := createSysAdminUser(t)
	_, token := createUserAndLogin(t)
	game := createTestGame(t, adminToken, "racing rift")
	addToLibrary(t, token, game.ID)

	uri := "/1.0/library"
	libraryAddTestsData := []libraryAddTest{
		{uriTest{"no token", uri, nil, gz.NewErrorMessage(gz.ErrorUnauthorized), true}, game.ID},
		{uriTest{"missing game id", uri, newJWT(token),
			gz.NewErrorMessage(gz.ErrorFormInvalidValue), false}, 0},
		{uriTest{"unknown game", uri, newJWT(token),
			gz.NewErrorMessage(gz.ErrorIDNotFound), false}, 99999},
		{uriTest{"game already in library", uri, newJWT(token),
			gz.NewErrorMessage(gz.ErrorResourceExists), false}, game.ID},
	}

	for _, test := range libraryAddTestsData {
		t.Run(test.testDesc, func(t *testing.T) {
			jwt := getJWTToken(t, test.jwtGen)
			b := new(bytes.Buffer)
			json.NewEncoder(b).Encode(LibraryAddInput{GameID: test.gameID})
			expEm, expCt := errMsgAndContentType(test.expErrMsg, ctJSON)
			expStatus := expEm.StatusCode
			bslice, _ := gztest.AssertRouteMultipleArgs("POST", test.URL, b, expStatus, jwt, expCt, t)
			if expStatus != http.StatusOK && !test.ignoreErrorBody {
				gztest.AssertBackendErrorCode(t.Name()+" POST /library", bslice, expEm.ErrCode, t)
			}
		})
	}
}
