package main

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/gosimple/slug"
	"github.com/jinzhu/gorm"

	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/bundles/users"
	"github.com/mlx-launcher/mlx/globals"
)

// The services used by the route handlers.
var (
	gamesService     = &games.Service{}
	downloadsService = newDownloadsService()
)

// UploadResponse is the result of uploading a game archive.
type UploadResponse struct {
	FileName string `json:"fileName"`
	Size     string `json:"size"`
}

// GameList returns a paginated list with all games.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/games
func GameList(p *gz.PaginationRequest, search string, user *users.User,
	tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {

	return gamesService.GameList(p, tx, search)
}

// GameIndex returns a single game.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/games/{game}
func GameIndex(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	return gamesService.GetGame(tx, id)
}

// GameCreate adds a new game to the catalog. Only system admins can
// create games.
// You can request this method with the following cURL request:
//
//	curl -k -X POST --url https://localhost:4430/1.0/admin/games
//	  -H "Content-Type: application/json"
//	  -d '{"name":"my game", "fileName":"my-game.zip", "executable":"setup.exe"}'
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func GameCreate(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}

	var cg games.CreateGame
	if errMsg := ParseStruct(&cg, r, false); errMsg != nil {
		return nil, errMsg
	}

	return gamesService.CreateGame(r.Context(), tx, cg)
}

// GameUpdate edits an existing game. Only system admins can update games.
// You can request this method with the following cURL request:
//
//	curl -k -X PATCH --url https://localhost:4430/1.0/admin/games/{game}
//	  -H "Content-Type: application/json" -d '{"description":"new text"}'
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func GameUpdate(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	if em := ensureSystemAdmin(user); em != nil {
		return nil, em
	}

	var ug games.UpdateGame
	if em := ParseStruct(&ug, r, false); em != nil {
		return nil, em
	}

	return gamesService.UpdateGame(r.Context(), tx, id, ug)
}

// GameRemove removes a game from the catalog. Only system admins can
// delete games.
// You can request this method with the following cURL request:
//
//	curl -k -X DELETE --url https://localhost:4430/1.0/admin/games/{game}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func GameRemove(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	if em := ensureSystemAdmin(user); em != nil {
		return nil, em
	}

	game, em := gamesService.GetGame(tx, id)
	if em != nil {
		return nil, em
	}

	if em := gamesService.RemoveGame(r.Context(), tx, id); em != nil {
		return nil, em
	}
	return game, nil
}

// GameUpload stores a game archive in the games storage. The multipart form
// should contain the archive in the 'file' field. Only system admins can
// upload archives.
// You can request this method with the following cURL request:
//
//	curl -k -X POST --url https://localhost:4430/1.0/admin/games/upload
//	  -F "file=@./my-game.zip"
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func GameUpload(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	if _, em := requireSystemAdmin(tx, r); em != nil {
		return nil, em
	}

	if err := r.ParseMultipartForm(0); err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorForm, err)
	}
	defer r.MultipartForm.RemoveAll()

	files := getRequestFiles(r)
	if len(files) == 0 {
		return nil, gz.NewErrorMessage(gz.ErrorFormMissingFiles)
	}
	if len(files) > 1 {
		return nil, gz.NewErrorMessage(gz.ErrorFormDuplicateFile)
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorForm, err)
	}
	defer f.Close()

	// Slugify the base name so the stored name is URL and filesystem safe.
	ext := filepath.Ext(fh.Filename)
	base := fh.Filename[:len(fh.Filename)-len(ext)]
	name := slug.Make(base) + ext

	if err := globals.Bucket.Store(r.Context(), f, name); err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
	}

	size, err := globals.Bucket.Size(r.Context(), name)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorFileNotFound, err)
	}

	return &UploadResponse{FileName: name, Size: games.FormatBytes(size)}, nil
}

// GameFileDownload serves a game archive from the games storage as a file
// attachment.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/games-files/{file} -O
func GameFileDownload(name string, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	// Reject names that try to escape the storage directory.
	if filepath.Base(name) != name {
		return nil, gz.NewErrorMessage(gz.ErrorNameWrongFormat)
	}

	f, size, err := globals.Bucket.Open(r.Context(), name)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorFileNotFound, err)
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", name))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, f); err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
	}
	return nil, nil
}

// requireSystemAdmin extracts the JWT user and fails unless it is a system
// administrator.
func requireSystemAdmin(tx *gorm.DB, r *http.Request) (*users.User, *gz.ErrMsg) {
	user, ok, errMsg := getUserFromJWT(tx, r)
	if !ok {
		return nil, &errMsg
	}
	if em := ensureSystemAdmin(user); em != nil {
		return nil, em
	}
	return user, nil
}

func ensureSystemAdmin(user *users.User) *gz.ErrMsg {
	if user == nil || user.Username == nil ||
		!globals.Permissions.IsSystemAdmin(*user.Username) {
		return gz.NewErrorMessage(gz.ErrorUnauthorized)
	}
	return nil
}
