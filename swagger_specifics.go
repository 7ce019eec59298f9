package main

import (
	"os"

	"github.com/gazebo-web/gz-go/v7"

	"github.com/mlx-launcher/mlx/bundles/downloads"
	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/bundles/users"
)

// This module contains swagger specifics related to doc generation.
// The are defined as private to avoid issues with linter and swagger
// requesting conflicting comments on types.

/////////////////////////////////////////////////
///////  swagger responses
/////////////////////////////////////////////////

// File response
// swagger:response fileResponse
type fileResponse struct {
	// In: body
	File os.File
}

// FileResponse is used to represent a File response (any file) type
// in swagger documentation.
// See: https://goswagger.io/faq/faq_spec.html#how-to-define-a-swagger-response-that-produces-a-binary-file

// Array of Games
// swagger:response jsonGames
type jsonGames struct {
	// In: body
	Games games.Games
}

// Array of Downloads
// swagger:response jsonDownloads
type jsonDownloads struct {
	// In: body
	Downloads downloads.Downloads
}

// A user profile
// swagger:response dbUserResponse
type dbUserResponse struct {
	// In: body
	User users.UserResponse
}

// A login result
// swagger:response loginResponse
type loginResponse struct {
	// In: body
	Login users.LoginResponse
}

// An upload result
// swagger:response uploadResponse
type uploadResponse struct {
	// In: body
	Upload UploadResponse
}

// The health check result
// swagger:response healthResponse
type healthResponse struct {
	// In: body
	Health HealthResponse
}

/////////////////////////////////////////////////
///////  swagger Parameters
/////////////////////////////////////////////////

// swagger:parameters singleGame updateGame deleteGame
type gameInPath struct {
	// Game id
	// in: path
	Game int `json:"game"`
}

// swagger:parameters downloadGameFile
type fileInPath struct {
	// Archive file name
	// in: path
	File string `json:"file"`
}

// swagger:parameters updateDownloadStatus
type uuidInPath struct {
	// in: path
	UUID string `json:"uuid"`
}

// swagger:parameters listGames
type listGamesParams struct {
	// Search query
	// in: query
	SearchQuery string `json:"q"`
}

// swagger:parameters listGames listLibrary listDownloads
type paginationParams struct {
	// The page to return
	// Minimum: 1
	// default: 1
	// in: query
	Page int `json:"page"`

	// Size of the pages
	// Minimum: 1
	// Maximum: 100
	// default: 20
	// in: query
	PageSize int `json:"per_page"`
}

// swagger:parameters registerUser
// See: https://goswagger.io/generate/spec/params.html
type registerParam struct {
	// The registration data
	//
	// required: true
	// in:body
	Registration users.RegistrationInput `json:"registration"`
}

// swagger:parameters createGame
type createGameParam struct {
	// Game data
	//
	// required: true
	// in:body
	Game games.CreateGame `json:"game"`
}

/////////////////////////////////////////////////
///////  swagger Errors
/////////////////////////////////////////////////

// Launcher error serialized as JSON
// swagger:response launcherError
type launcherError struct {
	// In: body
	ErrMsg gz.ErrMsg
}
