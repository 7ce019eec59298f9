package main

import (
	"net/http"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"

	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/bundles/users"
)

// LibraryAddInput is the request body used to add a game to a library.
type LibraryAddInput struct {
	GameID uint `json:"gameId" validate:"required"`
}

// LibraryList returns the games owned by the requesting user, paginated,
// in catalog order.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/library
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func LibraryList(p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {

	var gameList games.Games
	q := games.QueryForGames(tx).
		Joins("JOIN library_entries ON library_entries.game_id = games.id").
		Where("library_entries.user_id = ? AND library_entries.deleted_at IS NULL", user.ID)

	pagination, err := gz.PaginateQuery(q, &gameList, *p)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
	}
	if !pagination.PageFound {
		return nil, nil, gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
	}

	return &gameList, pagination, nil
}

// LibraryAdd adds a game to the requesting user's library. It fails if the
// game is already present.
// You can request this method with the following cURL request:
//
//	curl -k -X POST --url https://localhost:4430/1.0/library
//	  -H "Content-Type: application/json" -d '{"gameId":1}'
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func LibraryAdd(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	user, ok, errMsg := getUserFromJWT(tx, r)
	if !ok {
		return nil, &errMsg
	}

	var in LibraryAddInput
	if em := ParseStruct(&in, r, false); em != nil {
		return nil, em
	}

	// Make sure the game exists.
	if _, em := gamesService.GetGame(tx, in.GameID); em != nil {
		return nil, em
	}

	if em := users.AddToLibrary(r.Context(), tx, user, in.GameID, true); em != nil {
		return nil, em
	}

	response := users.CreateUserResponse(tx, user)
	return &response, nil
}
