package main

import (
	"github.com/gazebo-web/gz-go/v7"
)

// ///////////////////////////////////////////////
// / Declare the routes. See also router.go
var routes = gz.Routes{

	//////////
	// Auth //
	//////////

	// Route for user registration
	gz.Route{
		"Register",
		"Creates a new user account",
		"/auth/register",
		gz.AuthHeadersOptional,
		gz.Methods{
			// swagger:route POST /auth/register auth registerUser
			//
			// Register a new user
			//
			// Creates a new user account. The request body should contain the
			// following fields: 'username', 'email' and 'password'.
			// Returns the created user.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbUserResponse
			gz.Method{
				"POST",
				"Register a new user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(UserRegister)},
				},
			},
		},
		gz.SecureMethods{},
	},

	// Route for user login
	gz.Route{
		"Login",
		"Authenticates a user and returns an access token",
		"/auth/login",
		gz.AuthHeadersOptional,
		gz.Methods{
			// swagger:route POST /auth/login auth loginUser
			//
			// Log in
			//
			// Authenticates a user. The request body should contain the
			// fields 'username' and 'password'. The 'username' field also
			// accepts the user's email address.
			// Returns a signed token and the user profile.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: loginResponse
			gz.Method{
				"POST",
				"Log in with username or email",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(UserLogin)},
				},
			},
		},
		gz.SecureMethods{},
	},

	///////////
	// Games //
	///////////

	// Route for the game catalog
	gz.Route{
		"Games",
		"Information about all games",
		"/games",
		gz.AuthHeadersOptional,
		gz.Methods{
			// swagger:route GET /games games listGames
			//
			// Get list of games.
			//
			// Get the game catalog. Games will be returned paginated,
			// with pages of 20 games by default. The user can request a
			// different page with query parameter 'page', and the page size
			// can be defined with query parameter 'per_page'.
			// It also supports the 'q' parameter to perform a fulltext search
			// on game name and description.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: jsonGames
			gz.Method{
				"GET",
				"Get all games",
				gz.FormatHandlers{
					gz.FormatHandler{".json", gz.JSONListResult("Games", SearchHandler(GameList))},
					gz.FormatHandler{"", gz.JSONListResult("Games", SearchHandler(GameList))},
				},
			},
		},
		gz.SecureMethods{},
	},

	// Route for a single game
	gz.Route{
		"GameIndex",
		"Information about a single game",
		"/games/{game}",
		gz.AuthHeadersOptional,
		gz.Methods{
			// swagger:route GET /games/{game} games singleGame
			//
			// Get a single game
			//
			// Returns a single game given its numeric id.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbGame
			gz.Method{
				"GET",
				"Get a game",
				gz.FormatHandlers{
					gz.FormatHandler{".json", gz.JSONResult(IDHandler("game", false, GameIndex))},
					gz.FormatHandler{"", gz.JSONResult(IDHandler("game", false, GameIndex))},
				},
			},
		},
		gz.SecureMethods{},
	},

	// Route to download a game archive
	gz.Route{
		"GameFiles",
		"Serves game archives for download",
		"/games-files/{file}",
		gz.AuthHeadersOptional,
		gz.Methods{
			// swagger:route GET /games-files/{file} games downloadGameFile
			//
			// Download a game archive
			//
			// Serves the game archive as a file attachment.
			//
			//   Produces:
			//   - application/zip
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: fileResponse
			gz.Method{
				"GET",
				"Download a game archive",
				gz.FormatHandlers{
					gz.FormatHandler{"", NoResult(NameHandler("file", false, GameFileDownload))},
				},
			},
		},
		gz.SecureMethods{},
	},

	/////////////////
	// Admin Games //
	/////////////////

	// Route to create games. Restricted to system administrators.
	gz.Route{
		"AdminGames",
		"Catalog administration",
		"/admin/games",
		gz.AuthHeadersOptional,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route POST /admin/games admin createGame
			//
			// Create game
			//
			// Creates a new game in the catalog. The request body should
			// contain the following fields: 'name', 'emoji', 'description',
			// 'fileName', 'downloadUrl' and 'executable'. Either 'fileName'
			// or 'downloadUrl' must be present.
			// Only system administrators can create games.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbGame
			gz.Method{
				"POST",
				"Create a new game",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(GameCreate)},
				},
			},
		},
	},

	// Route to upload a game archive. Restricted to system administrators.
	gz.Route{
		"AdminGameUpload",
		"Upload a game archive to the storage bucket",
		"/admin/games/upload",
		gz.AuthHeadersOptional,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route POST /admin/games/upload admin uploadGameFile
			//
			// Upload a game archive
			//
			// Uploads a game archive into the games storage. The multipart
			// form should contain the archive in the 'file' field. The
			// uploaded file name is returned and can be used as the
			// 'fileName' field when creating a game.
			// Only system administrators can upload archives.
			//
			//   Consumes:
			//   - multipart/form-data
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: uploadResponse
			gz.Method{
				"POST",
				"Upload a game archive",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(GameUpload)},
				},
			},
		},
	},

	// Route to modify or remove a game. Restricted to system administrators.
	gz.Route{
		"AdminGameUpdate",
		"Modify or remove a game",
		"/admin/games/{game}",
		gz.AuthHeadersOptional,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route PATCH /admin/games/{game} admin updateGame
			//
			// Update a game
			//
			// Updates a game. The request body can contain any subset of the
			// fields 'name', 'emoji', 'description', 'fileName',
			// 'downloadUrl' and 'executable'.
			// Only system administrators can update games.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbGame
			gz.Method{
				"PATCH",
				"Edit a game",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("game", true, GameUpdate))},
				},
			},
			// swagger:route PUT /admin/games/{game} admin replaceGameFields
			//
			// Update a game
			//
			// Same as PATCH; kept so clients issuing PUT for partial
			// updates keep working.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbGame
			gz.Method{
				"PUT",
				"Edit a game",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("game", true, GameUpdate))},
				},
			},
			// swagger:route DELETE /admin/games/{game} admin deleteGame
			//
			// Delete a game
			//
			// Removes a game from the catalog. User libraries keep their
			// entries, but the game can no longer be downloaded.
			// Only system administrators can delete games.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbGame
			gz.Method{
				"DELETE",
				"Remove a game",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("game", true, GameRemove))},
				},
			},
		},
	},

	/////////////
	// Library //
	/////////////

	// Route for the authenticated user's game library
	gz.Route{
		"Library",
		"The game library of the authenticated user",
		"/library",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route GET /library library listLibrary
			//
			// Get the user's library
			//
			// Returns the games owned by the authenticated user, paginated,
			// in catalog order.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: jsonGames
			gz.Method{
				"GET",
				"Get the user library",
				gz.FormatHandlers{
					gz.FormatHandler{".json", gz.JSONListResult("Library", PaginationHandlerWithUser(LibraryList, true))},
					gz.FormatHandler{"", gz.JSONListResult("Library", PaginationHandlerWithUser(LibraryList, true))},
				},
			},
			// swagger:route POST /library library addToLibrary
			//
			// Add a game to the user's library
			//
			// Adds a game to the library of the authenticated user. The
			// request body should contain the field 'gameId'. Fails if the
			// game is already in the library.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbUserResponse
			gz.Method{
				"POST",
				"Add a game to the library",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(LibraryAdd)},
				},
			},
		},
	},

	///////////////
	// Downloads //
	///////////////

	// Route for download records
	gz.Route{
		"Downloads",
		"Download records of the authenticated user",
		"/downloads",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route GET /downloads downloads listDownloads
			//
			// Get the user's downloads
			//
			// Returns the download records of the authenticated user,
			// paginated.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: jsonDownloads
			gz.Method{
				"GET",
				"Get the user downloads",
				gz.FormatHandlers{
					gz.FormatHandler{".json", gz.JSONListResult("Downloads", PaginationHandlerWithUser(DownloadList, true))},
					gz.FormatHandler{"", gz.JSONListResult("Downloads", PaginationHandlerWithUser(DownloadList, true))},
				},
			},
			// swagger:route POST /downloads downloads createDownload
			//
			// Create a download
			//
			// Creates a download record for a game and returns it together
			// with a resolved download link. The request body should contain
			// the field 'gameId'.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbDownload
			gz.Method{
				"POST",
				"Create a download record",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(DownloadCreate)},
				},
			},
		},
	},

	// Route to mark a download as installed
	gz.Route{
		"DownloadComplete",
		"Marks a download as installed",
		"/downloads/complete",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route POST /downloads/complete downloads completeDownload
			//
			// Complete a download
			//
			// Marks a download record as installed and adds the game to the
			// user's library. The request body should contain the fields
			// 'downloadId' and 'installPath'. Only the user that created the
			// download can complete it.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbDownload
			gz.Method{
				"POST",
				"Complete a download",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(DownloadComplete)},
				},
			},
		},
	},

	// Route to report download progress
	gz.Route{
		"DownloadStatus",
		"Updates the status of a download",
		"/downloads/{uuid}/status",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route PUT /downloads/{uuid}/status downloads updateDownloadStatus
			//
			// Update download status
			//
			// Updates the status and progress of a download record. The
			// request body should contain the fields 'status' and
			// 'progress'. Only the user that created the download can
			// update it. Installed downloads can no longer be updated.
			//
			//   Consumes:
			//   - application/json
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: dbDownload
			gz.Method{
				"PUT",
				"Update the download status",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(NameHandler("uuid", true, DownloadUpdateStatus))},
				},
			},
		},
	},

	////////////
	// Health //
	////////////

	// Route to check the server health
	gz.Route{
		"Health",
		"Server health check",
		"/health",
		gz.AuthHeadersOptional,
		gz.Methods{
			// swagger:route GET /health health healthCheck
			//
			// Health check
			//
			// Returns the server status, the configured port and the number
			// of games available in the catalog.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: healthResponse
			gz.Method{
				"GET",
				"Get the server health",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(HealthCheck)},
				},
			},
		},
		gz.SecureMethods{},
	},

	////////////////////
	// Admin - Search //
	////////////////////

	// Route to manage elastic search configs
	gz.Route{
		"ElasticSearch",
		"Route to list and create ElasticSearch configs",
		"/admin/search",
		gz.AuthHeadersOptional,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route GET /admin/search search elasticSearchUpdate
			//
			// Get a list of the available ElasticSearch configurations.
			//
			// Zero or more ElasticSearch configurations may be specified. The
			// configuration marked as `primary` is the active ElasticSearch server.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: ElasticSearchConfigs
			gz.Method{
				"GET",
				"Gets a list of the ElasticSearch configs",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(ListElasticSearchHandler)},
				},
			},
			// swagger:route POST /admin/search search elasticSearchUpdate
			//
			// Creates an ElasticSearch server configuration.
			//
			// The request body should contain an 'address', and optionally
			// 'username', 'password' and 'primary'.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: ElasticSearchConfig
			gz.Method{
				"POST",
				"Creates an ElasticSearch config",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(CreateElasticSearchHandler)},
				},
			},
		},
	},
	// Route to reconnect to the primary elastic search config
	gz.Route{
		"ElasticSearch",
		"Route to reconnect to the primary elastic search config",
		"/admin/search/reconnect",
		gz.AuthHeadersOptional,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route GET /admin/search/reconnect search elasticSearchUpdate
			//
			// Reconnects to the primary ElasticSearch server.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: AdminSearchResponse
			gz.Method{
				"GET",
				"Reconnect to the primary ElasticSearch config",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(ReconnectElasticSearchHandler)},
				},
			},
		},
	},
	// Route to rebuild the primary elastic search indices
	gz.Route{
		"ElasticSearch",
		"Route to rebuild the primary elastic search indices",
		"/admin/search/rebuild",
		gz.AuthHeadersOptional,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route GET /admin/search/rebuild search elasticSearchUpdate
			//
			// Rebuilds the primary ElasticSearch indices.
			//
			// Rebuilding the indices may take several minutes. Use this route
			// when or if the ElasticSearch indices have become out of date.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: AdminSearchResponse
			gz.Method{
				"GET",
				"Rebuild the primary ElasticSearch indices",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RebuildElasticSearchHandler)},
				},
			},
		},
	},
	// Route to update the primary elastic search indices
	gz.Route{
		"ElasticSearch",
		"Route to update the primary elastic search indices",
		"/admin/search/update",
		gz.AuthHeadersOptional,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route GET /admin/search/update search elasticSearchUpdate
			//
			// Updates the primary ElasticSearch server indices.
			//
			// This route will populate the primary ElasticSearch server with
			// new data contained in the database. This route may take several
			// minutes to complete.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: AdminSearchResponse
			gz.Method{
				"GET",
				"Update the primary ElasticSearch indices",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(UpdateElasticSearchHandler)},
				},
			},
		},
	},
	// Route to manage an elastic search config
	gz.Route{
		"ElasticSearch",
		"Route to manage an ElasticSearch config",
		"/admin/search/{config_id}",
		gz.AuthHeadersOptional,
		gz.Methods{},
		gz.SecureMethods{
			// swagger:route DELETE /admin/search/{config_id} search elasticSearchUpdate
			//
			// Deletes an ElasticSearch server configuration.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: ElasticSearchConfig
			gz.Method{
				"DELETE",
				"Deletes an ElasticSearch config",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(DeleteElasticSearchHandler)},
				},
			},
			// swagger:route PATCH /admin/search/{config_id} search elasticSearchUpdate
			//
			// Modifies an ElasticSearch server configuration.
			//
			//   Produces:
			//   - application/json
			//
			//   Schemes: https
			//
			//   Responses:
			//     default: launcherError
			//     200: ElasticSearchConfig
			gz.Method{
				"PATCH",
				"Modifies an ElasticSearch config",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(ModifyElasticSearchHandler)},
				},
			},
		},
	},
}
