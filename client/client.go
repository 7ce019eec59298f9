// Package client implements a REST client for the MLX launcher server.
// All operations go through an explicit Session; there is no package level
// state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// APIVersion is the server route prefix.
const APIVersion = "1.0"

// Session is a client connection to a launcher server. The zero value is
// not usable; create sessions with New.
//
// Token is set by Login and sent as a Bearer token on every subsequent
// request. It can also be set directly, eg. from saved settings.
type Session struct {
	// BaseURL is the scheme and host of the server, eg. "http://localhost:8000"
	BaseURL string

	// Token is the access token returned by Login.
	Token string

	// HTTPClient is the underlying http client.
	HTTPClient *http.Client
}

// New returns a Session pointed at the given server base URL.
func New(baseURL string) *Session {
	return &Session{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is the error envelope returned by the server.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`

	// ErrCode is the server side error code.
	ErrCode int `json:"errcode"`

	// ErrID identifies this error instance in the server logs.
	ErrID string `json:"errid"`

	// Msg is a human readable message.
	Msg string `json:"msg"`

	// Extra carries additional details, eg. the field that failed
	// validation.
	Extra []string `json:"extra"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("server error (status %d, code %d): %s",
		e.StatusCode, e.ErrCode, e.Msg)
}

// User is a user profile as returned by the server.
type User struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Library     []uint `json:"library"`
	InstallPath string `json:"installPath"`
	SysAdmin    bool   `json:"sysAdmin"`
}

// LoginResult is the result of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Game is a catalog entry.
type Game struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Size        string `json:"size"`
	Downloads   int    `json:"downloads"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
	Executable  string `json:"executable"`
}

// Download is a download ledger record.
type Download struct {
	UUID         string `json:"id"`
	GameID       uint   `json:"gameId"`
	GameName     string `json:"gameName"`
	FileName     string `json:"fileName"`
	Executable   string `json:"executable"`
	DownloadLink string `json:"downloadLink"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	InstallPath  string `json:"installPath"`
}

// Health is the server health check result.
type Health struct {
	Status         string    `json:"status"`
	Port           string    `json:"port"`
	GamesAvailable int       `json:"gamesAvailable"`
	Timestamp      time.Time `json:"timestamp"`
}

// Register creates a new user account.
func (s *Session) Register(ctx context.Context, username, email, password string) (*User, error) {
	in := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	var user User
	if err := s.do(ctx, http.MethodPost, "/auth/register", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates against the server with a username or email address.
// On success the returned token is stored in the session and used for all
// subsequent requests.
func (s *Session) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	in := map[string]string{
		"username": login,
		"password": password,
	}
	var result LoginResult
	if err := s.do(ctx, http.MethodPost, "/auth/login", in, &result); err != nil {
		return nil, err
	}
	s.Token = result.Token
	return &result, nil
}

// Games returns the game catalog. An optional search string narrows the
// result.
func (s *Session) Games(ctx context.Context, search string) ([]Game, error) {
	path := "/games"
	if search != "" {
		path += "?q=" + url.QueryEscape(search)
	}
	var list []Game
	if err := s.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Game returns a single catalog entry.
func (s *Session) Game(ctx context.Context, id uint) (*Game, error) {
	var game Game
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/games/%d", id), nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// Library returns the games owned by the logged in user, in catalog order.
func (s *Session) Library(ctx context.Context) ([]Game, error) {
	var list []Game
	if err := s.do(ctx, http.MethodGet, "/library", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddToLibrary adds a game to the logged in user's library. The server
// rejects games that are already present.
func (s *Session) AddToLibrary(ctx context.Context, gameID uint) (*User, error) {
	in := map[string]uint{"gameId": gameID}
	var user User
	if err := s.do(ctx, http.MethodPost, "/library", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateDownload creates a download record for a game and returns it with
// a resolved download link.
func (s *Session) CreateDownload(ctx context.Context, gameID uint) (*Download, error) {
	in := map[string]uint{"gameId": gameID}
	var download Download
	if err := s.do(ctx, http.MethodPost, "/downloads", in, &download); err != nil {
		return nil, err
	}
	return &download, nil
}

// Downloads returns the download records of the logged in user.
func (s *Session) Downloads(ctx context.Context) ([]Download, error) {
	var list []Download
	if err := s.do(ctx, http.MethodGet, "/downloads", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CompleteDownload marks a download as installed and adds the game to the
// user's library.
func (s *Session) CompleteDownload(ctx context.Context, downloadID, installPath string) (*Download, error) {
	in := map[string]string{
		"downloadId":  downloadID,
		"installPath": installPath,
	}
	var download Download
	if err := s.do(ctx, http.MethodPost, "/downloads/complete", in, &download); err != nil {
		return nil, err
	}
	return &download, nil
}

// UpdateDownloadStatus reports download progress to the server.
func (s *Session) UpdateDownloadStatus(ctx context.Context, downloadID, status string, progress int) (*Download, error) {
	in := map[string]interface{}{
		"status":   status,
		"progress": progress,
	}
	var download Download
	if err := s.do(ctx, http.MethodPut, "/downloads/"+downloadID+"/status", in, &download); err != nil {
		return nil, err
	}
	return &download, nil
}

// Health returns the server health check result.
func (s *Session) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := s.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// do sends a request to the server and decodes the JSON response into out.
// Server errors are returned as *APIError.
func (s *Session) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(data)
	}

	u := s.BaseURL + "/" + APIVersion + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	res, err := s.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "requesting %s %s", method, path)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(apiErr); err != nil {
			apiErr.Msg = res.Status
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decoding response body")
		}
	}
	return nil
}
