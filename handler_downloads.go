package main

import (
	"net"
	"net/http"
	"time"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"

	"github.com/mlx-launcher/mlx/bundles/downloads"
	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/bundles/users"
	"github.com/mlx-launcher/mlx/globals"
)

func newDownloadsService() *downloads.Service {
	return &downloads.Service{Games: gamesService}
}

// HealthResponse is the result of the health check route.
type HealthResponse struct {
	Status         string    `json:"status"`
	Port           string    `json:"port"`
	GamesAvailable int       `json:"gamesAvailable"`
	Timestamp      time.Time `json:"timestamp"`
}

// DownloadCreate creates a download record for a game and returns it with a
// resolved download link.
// You can request this method with the following cURL request:
//
//	curl -k -X POST --url https://localhost:4430/1.0/downloads
//	  -H "Content-Type: application/json" -d '{"gameId":1}'
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func DownloadCreate(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	user, ok, errMsg := getUserFromJWT(tx, r)
	if !ok {
		return nil, &errMsg
	}

	var cd downloads.CreateDownload
	if em := ParseStruct(&cd, r, false); em != nil {
		return nil, em
	}

	return downloadsService.CreateDownload(r.Context(), tx, cd, requestBaseURL(r), user)
}

// DownloadList returns the download records of the requesting user,
// paginated.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/downloads
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func DownloadList(p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {

	return downloadsService.DownloadList(p, tx, user)
}

// DownloadComplete marks a download record as installed and adds the game
// to the requesting user's library.
// You can request this method with the following cURL request:
//
//	curl -k -X POST --url https://localhost:4430/1.0/downloads/complete
//	  -H "Content-Type: application/json"
//	  -d '{"downloadId":"<uuid>", "installPath":"/home/alice/MLXGames"}'
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func DownloadComplete(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	user, ok, errMsg := getUserFromJWT(tx, r)
	if !ok {
		return nil, &errMsg
	}

	var cd downloads.CompleteDownload
	if em := ParseStruct(&cd, r, false); em != nil {
		return nil, em
	}

	return downloadsService.Complete(r.Context(), tx, cd, user)
}

// DownloadUpdateStatus updates the status and progress of a download record.
// You can request this method with the following cURL request:
//
//	curl -k -X PUT --url https://localhost:4430/1.0/downloads/{uuid}/status
//	  -H "Content-Type: application/json"
//	  -d '{"status":"downloading", "progress":42}'
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func DownloadUpdateStatus(uuidStr string, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var up downloads.UpdateProgress
	if em := ParseStruct(&up, r, false); em != nil {
		return nil, em
	}

	return downloadsService.UpdateStatus(r.Context(), tx, uuidStr, up, user)
}

// HealthCheck returns the server status and the number of games available
// in the catalog.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/health
func HealthCheck(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	var count int
	if err := tx.Model(&games.Game{}).Count(&count).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}

	return &HealthResponse{
		Status:         "OK",
		Port:           requestPort(r),
		GamesAvailable: count,
		Timestamp:      time.Now(),
	}, nil
}

// requestBaseURL returns the scheme, host and api prefix the given request
// came in on. It is used to build download links that point back at this
// server.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/" + globals.APIVersion
}

// requestPort returns the port of the host the given request came in on.
func requestPort(r *http.Request) string {
	if _, port, err := net.SplitHostPort(r.Host); err == nil {
		return port
	}
	if r.TLS != nil {
		return "443"
	}
	return "80"
}
