package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gazebo-web/gz-go/v7"
	gztest "github.com/gazebo-web/gz-go/v7/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlx-launcher/mlx/bundles/downloads"
	"github.com/mlx-launcher/mlx/bundles/games"
)

// Tests for downloads ledger related routes

// createDownload creates a ledger record for the given game using the
// token's user, and returns it.
func createDownload(t *testing.T, token string, gameID uint) *downloads.Download {
	cd := downloads.CreateDownload{GameID: gameID}
	b := new(bytes.Buffer)
	json.NewEncoder(b).Encode(cd)
	bslice, _ := gztest.AssertRouteMultipleArgs("POST", "/1.0/downloads", b,
		http.StatusOK, &token, ctJSON, t)
	var d downloads.Download
	require.NoError(t, json.Unmarshal(*bslice, &d), "Unable to unmarshal download %s", string(*bslice))
	require.NotNil(t, d.UUID)
	return &d
}

// reportStatus sends a status report for a ledger record and returns the
// http response and body.
func reportStatus(t *testing.T, token, uuidStr, status string, progress int,
	expEm gz.ErrMsg, expCt string) *[]byte {

	up := downloads.UpdateProgress{Status: status, Progress: progress}
	b := new(bytes.Buffer)
	json.NewEncoder(b).Encode(up)
	uri := fmt.Sprintf("/1.0/downloads/%s/status", uuidStr)
	bslice, _ := gztest.AssertRouteMultipleArgs("PUT", uri, b, expEm.StatusCode, &token, expCt, t)
	return bslice
}

// TestDownloadCreate tests the POST /downloads route.
func TestDownloadCreate(t *testing.T) {
	setup()
	adminToken := createSysAdminUser(t)
	_, token := createUserAndLogin(t)
	game := createTestGame(t, adminToken, "racing rift")

	// A record for a game with an external URL carries that URL as link.
	d := createDownload(t, token, game.ID)
	assert.Equal(t, game.ID, *d.GameID)
	assert.Equal(t, *game.Name, *d.GameName)
	assert.Equal(t, *game.Executable, *d.Executable)
	assert.Equal(t, *game.DownloadURL, *d.DownloadLink)
	assert.Equal(t, downloads.StatusReady, *d.Status)
	assert.Equal(t, 0, d.Progress)
	assert.Nil(t, d.InstalledAt)

	// Creating a record bumps the game's download counter.
	bslice, _ := gztest.AssertRouteMultipleArgs("GET",
		fmt.Sprintf("/1.0/games/%d", game.ID), nil, http.StatusOK, nil, ctJSON, t)
	var got games.Game
	require.NoError(t, json.Unmarshal(*bslice, &got))
	assert.Equal(t, 1, got.Downloads)

	// A record for a hosted archive links back at the games-files route.
	contents := "fake zip contents"
	archive := []gztest.FileDesc{{Path: "hosted.zip", Contents: contents}}
	code, bslice2, ok := gztest.SendMultipartPOST(t.Name(), t, "/1.0/admin/games/upload",
		&adminToken, nil, archive)
	assert.True(t, ok)
	require.Equal(t, http.StatusOK, code)
	var ur UploadResponse
	require.NoError(t, json.Unmarshal(*bslice2, &ur))

	cg := games.CreateGame{Name: "hosted game", FileName: ur.FileName, Executable: "game.exe"}
	b := new(bytes.Buffer)
	json.NewEncoder(b).Encode(cg)
	bslice, _ = gztest.AssertRouteMultipleArgs("POST", "/1.0/admin/games", b,
		http.StatusOK, &adminToken, ctJSON, t)
	var hosted games.Game
	require.NoError(t, json.Unmarshal(*bslice, &hosted))

	d = createDownload(t, token, hosted.ID)
	assert.Contains(t, *d.DownloadLink, "/1.0/games-files/"+ur.FileName)

	// Error cases.
	downloadCreateTestsData := []struct {
		uriTest
		gameID uint
	}{
		{uriTest{"no token", "/1.0/downloads", nil, gz.NewErrorMessage(gz.ErrorUnauthorized), true}, game.ID},
		{uriTest{"missing game id", "/1.0/downloads", newJWT(token),
			gz.NewErrorMessage(gz.ErrorFormInvalidValue), false}, 0},
		{uriTest{"unknown game", "/1.0/downloads", newJWT(token),
			gz.NewErrorMessage(gz.ErrorIDNotFound), false}, 99999},
	}
	for _, test := range downloadCreateTestsData {
		t.Run(test.testDesc, func(t *testing.T) {
			jwt := getJWTToken(t, test.jwtGen)
			b := new(bytes.Buffer)
			json.NewEncoder(b).Encode(downloads.CreateDownload{GameID: test.gameID})
			expEm, expCt := errMsgAndContentType(test.expErrMsg, ctJSON)
			bslice, _ := gztest.AssertRouteMultipleArgs("POST", test.URL, b, expEm.StatusCode, jwt, expCt, t)
			if !test.ignoreErrorBody {
				gztest.AssertBackendErrorCode(t.Name()+" POST /downloads", bslice, expEm.ErrCode, t)
			}
		})
	}
}

// TestDownloadList checks that users only see their own ledger records.
func TestDownloadList(t *testing.T) {
	setup()
	adminToken := createSysAdminUser(t)
	_, token1 := createUserAndLogin(t)
	_, token2 := createUserAndLogin(t)
	game1 := createTestGame(t, adminToken, "racing rift")
	game2 := createTestGame(t, adminToken, "puzzle harbor")

	d1 := createDownload(t, token1, game1.ID)
	d2 := createDownload(t, token1, game2.ID)
	createDownload(t, token2, game2.ID)

	bslice, _ := gztest.AssertRouteMultipleArgs("GET", "/1.0/downloads", nil,
		http.StatusOK, &token1, ctJSON, t)
	var list downloads.Downloads
	require.NoError(t, json.Unmarshal(*bslice, &list))
	require.Len(t, list, 2)
	// Records come in creation order.
	assert.Equal(t, *d1.UUID, *list[0].UUID)
	assert.Equal(t, *d2.UUID, *list[1].UUID)

	bslice, _ = gztest.AssertRouteMultipleArgs("GET", "/1.0/downloads", nil,
		http.StatusOK, &token2, ctJSON, t)
	require.NoError(t, json.Unmarshal(*bslice, &list))
	require.Len(t, list, 1)
	assert.Equal(t, game2.ID, *list[0].GameID)
}

// TestDownloadStatusFlow walks a ledger record through the client install
// workflow.
func TestDownloadStatusFlow(t *testing.T) {
	setup()
	adminToken := createSysAdminUser(t)
	_, token := createUserAndLogin(t)
	_, otherToken := createUserAndLogin(t)
	game := createTestGame(t, adminToken, "racing rift")
	d := createDownload(t, token, game.ID)

	okEm := gz.ErrorMessageOK()

	// Another user cannot report on a record it does not own.
	bslice := reportStatus(t, otherToken, *d.UUID, downloads.StatusDownloading, 10,
		*gz.NewErrorMessage(gz.ErrorUnauthorized), ctTextPlain)
	gztest.AssertBackendErrorCode(t.Name(), bslice, gz.ErrorUnauthorized, t)

	// Unknown records are reported as such.
	bslice = reportStatus(t, token, "no-such-uuid", downloads.StatusDownloading, 10,
		*gz.NewErrorMessage(gz.ErrorIDNotFound), ctTextPlain)
	gztest.AssertBackendErrorCode(t.Name(), bslice, gz.ErrorIDNotFound, t)

	// Unknown statuses are rejected.
	bslice = reportStatus(t, token, *d.UUID, "melting", 10,
		*gz.NewErrorMessage(gz.ErrorFormInvalidValue), ctTextPlain)
	gztest.AssertBackendErrorCode(t.Name(), bslice, gz.ErrorFormInvalidValue, t)

	// The owner walks the record through the install workflow.
	bslice = reportStatus(t, token, *d.UUID, downloads.StatusDownloading, 42, okEm, ctJSON)
	var got downloads.Download
	require.NoError(t, json.Unmarshal(*bslice, &got))
	assert.Equal(t, downloads.StatusDownloading, *got.Status)
	assert.Equal(t, 42, got.Progress)

	reportStatus(t, token, *d.UUID, downloads.StatusDownloaded, 100, okEm, ctJSON)
	reportStatus(t, token, *d.UUID, downloads.StatusExtracting, 100, okEm, ctJSON)

	// Completion marks it installed.
	completeDownload(t, token, *d.UUID, "/home/alice/MLXGames/racing-rift")

	// Installed records are terminal.
	bslice = reportStatus(t, token, *d.UUID, downloads.StatusDownloading, 0,
		*gz.NewErrorMessage(gz.ErrorFormInvalidValue), ctTextPlain)
	gztest.AssertBackendErrorCode(t.Name(), bslice, gz.ErrorFormInvalidValue, t)

	// The sysadmin can report on any record. Use a fresh one, the first is
	// already terminal.
	d2 := createDownload(t, token, game.ID)
	reportStatus(t, adminToken, *d2.UUID, downloads.StatusFailed, 0, okEm, ctJSON)
}

// completeDownload reports a finished install and returns the updated
// ledger record.
func completeDownload(t *testing.T, token, uuidStr, installPath string) *downloads.Download {
	cd := downloads.CompleteDownload{DownloadID: uuidStr, InstallPath: installPath}
	b := new(bytes.Buffer)
	json.NewEncoder(b).Encode(cd)
	bslice, _ := gztest.AssertRouteMultipleArgs("POST", "/1.0/downloads/complete", b,
		http.StatusOK, &token, ctJSON, t)
	var d downloads.Download
	require.NoError(t, json.Unmarshal(*bslice, &d))
	assert.Equal(t, downloads.StatusInstalled, *d.Status)
	assert.Equal(t, 100, d.Progress)
	require.NotNil(t, d.InstallPath)
	assert.Equal(t, installPath, *d.InstallPath)
	assert.NotNil(t, d.InstalledAt)
	return &d
}

// TestDownloadComplete checks that completing a download grants the game
// to the user's library exactly once.
func TestDownloadComplete(t *testing.T) {
	setup()
	adminToken := createSysAdminUser(t)
	_, token := createUserAndLogin(t)
	game := createTestGame(t, adminToken, "racing rift")
	d := createDownload(t, token, game.ID)

	// Completing a foreign record is not allowed.
	_, otherToken := createUserAndLogin(t)
	cd := downloads.CompleteDownload{DownloadID: *d.UUID, InstallPath: "/tmp/games"}
	b := new(bytes.Buffer)
	json.NewEncoder(b).Encode(cd)
	bslice, _ := gztest.AssertRouteMultipleArgs("POST", "/1.0/downloads/complete", b,
		http.StatusUnauthorized, &otherToken, ctTextPlain, t)
	gztest.AssertBackendErrorCode(t.Name(), bslice, gz.ErrorUnauthorized, t)

	completeDownload(t, token, *d.UUID, "/home/alice/MLXGames/racing-rift")

	// The game landed in the library.
	gameList := getLibrary(t, token)
	require.Len(t, gameList, 1)
	assert.Equal(t, game.ID, gameList[0].ID)

	// Reporting the same completion again is idempotent: still one library
	// entry.
	completeDownload(t, token, *d.UUID, "/home/alice/MLXGames/racing-rift")
	gameList = getLibrary(t, token)
	require.Len(t, gameList, 1)
}

// TestHealthCheck tests the public health route.
func TestHealthCheck(t *testing.T) {
	setup()

	before := time.Now()
	bslice, _ := gztest.AssertRouteMultipleArgs("GET", "/1.0/health", nil,
		http.StatusOK, nil, ctJSON, t)
	var hr HealthResponse
	require.NoError(t, json.Unmarshal(*bslice, &hr))
	assert.Equal(t, "OK", hr.Status)
	// The catalog seed makes at least one game available.
	assert.True(t, hr.GamesAvailable >= 1)
	assert.False(t, hr.Timestamp.Before(before.Add(-time.Minute)))
}
