package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer returns a fake launcher server and a session pointed at it.
// The handler receives the request after the test captured method, path and
// headers.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*Session, *httptest.Server) {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(ts.URL), ts
}

func TestLoginStoresToken(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/1.0/auth/login", r.URL.Path)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "alice", in["username"])
		json.NewEncoder(w).Encode(LoginResult{
			Token: "signed-token",
			User:  User{ID: 1, Username: "alice"},
		})
	})

	result, err := s.Login(context.Background(), "alice", "secret-pwd-1")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.Token)
	assert.Equal(t, "alice", result.User.Username)
	assert.Equal(t, "signed-token", s.Token, "Login should store the token in the session")
}

func TestTokenSentAsBearer(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer signed-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]Game{})
	})
	s.Token = "signed-token"

	_, err := s.Library(context.Background())
	require.NoError(t, err)
}

func TestGamesSearchQuery(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.0/games", r.URL.Path)
		assert.Equal(t, "racing game", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode([]Game{{ID: 1, Name: "racing rift"}})
	})

	list, err := s.Games(context.Background(), "racing game")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "racing rift", list[0].Name)
}

func TestCreateDownload(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/1.0/downloads", r.URL.Path)
		var in map[string]uint
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, uint(7), in["gameId"])
		json.NewEncoder(w).Encode(Download{
			UUID:         "uuid-1234",
			GameID:       7,
			DownloadLink: "http://example.com/1.0/games-files/game.zip",
			Status:       "ready",
		})
	})

	d, err := s.CreateDownload(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "uuid-1234", d.UUID)
	assert.Equal(t, "ready", d.Status)
}

func TestUpdateDownloadStatus(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/1.0/downloads/uuid-1234/status", r.URL.Path)
		var in map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "downloading", in["status"])
		assert.Equal(t, float64(42), in["progress"])
		json.NewEncoder(w).Encode(Download{UUID: "uuid-1234", Status: "downloading", Progress: 42})
	})

	d, err := s.UpdateDownloadStatus(context.Background(), "uuid-1234", "downloading", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, d.Progress)
}

func TestCompleteDownload(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.0/downloads/complete", r.URL.Path)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "uuid-1234", in["downloadId"])
		assert.Equal(t, "/games/racing-rift", in["installPath"])
		json.NewEncoder(w).Encode(Download{UUID: "uuid-1234", Status: "installed", Progress: 100})
	})

	d, err := s.CompleteDownload(context.Background(), "uuid-1234", "/games/racing-rift")
	require.NoError(t, err)
	assert.Equal(t, "installed", d.Status)
}

// Server errors come back as *APIError carrying the server error envelope.
func TestServerErrorEnvelope(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errcode": 2,
			"errid":   "some-uuid",
			"msg":     "Unauthorized request",
		})
	})

	_, err := s.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "Expected an *APIError, got %T", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 2, apiErr.ErrCode)
	assert.Equal(t, "Unauthorized request", apiErr.Msg)
	assert.Contains(t, apiErr.Error(), "Unauthorized request")
}

// Errors with a non JSON body still produce an APIError with the HTTP
// status as message.
func TestServerErrorWithoutBody(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	_, err := s.Health(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
