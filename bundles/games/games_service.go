package games

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"

	"github.com/mlx-launcher/mlx/globals"
)

// Service is the main struct exported by this Games Service.
// It was meant as a way to structure code and help future extensions.
type Service struct{}

// GetGame returns a catalog game by its id.
func (gs *Service) GetGame(tx *gorm.DB, id uint) (*Game, *gz.ErrMsg) {
	game, err := ByID(tx, id)
	if err != nil {
		em := gz.NewErrorMessageWithArgs(gz.ErrorIDNotFound, err,
			[]string{fmt.Sprint(id)})
		return nil, em
	}
	return game, nil
}

// isbasicGameListQuery returns true when the request has no argument that
// changes the default catalog listing.
func isbasicGameListQuery(p *gz.PaginationRequest, search string) bool {
	basicPagination := p == nil || !p.PageRequested || p.PerPage == 20
	return basicPagination && search == ""
}

// getGameListCache reads a cached catalog page from memcache.
func getGameListCache(basicQuery bool, gamesCacheKey, paginationCacheKey string) (*Games, *gz.PaginationResult, bool) {
	if !basicQuery || globals.QueryCache == nil {
		return nil, nil, false
	}

	gamesItem, gamesErr := globals.QueryCache.Get(gamesCacheKey)
	paginationItem, paginationErr := globals.QueryCache.Get(paginationCacheKey)
	if gamesErr != nil || paginationErr != nil {
		return nil, nil, false
	}

	var gameList Games
	var pagination gz.PaginationResult
	if json.Unmarshal(gamesItem.Value, &gameList) != nil ||
		json.Unmarshal(paginationItem.Value, &pagination) != nil {
		return nil, nil, false
	}
	return &gameList, &pagination, true
}

// GameList returns a paginated list of catalog games, in insertion (id)
// order. An optional search string narrows the catalog using a fulltext
// match on name and description.
func (gs *Service) GameList(p *gz.PaginationRequest, tx *gorm.DB,
	search string) (*Games, *gz.PaginationResult, *gz.ErrMsg) {

	basicQuery := isbasicGameListQuery(p, search)

	paginationCacheKey := "games_list_pagination"
	gamesCacheKey := "games_list_games"
	if p != nil && p.PageRequested && p.PerPage == 20 {
		paginationCacheKey = fmt.Sprintf("%s%d", paginationCacheKey, p.Page)
		gamesCacheKey = fmt.Sprintf("%s%d", gamesCacheKey, p.Page)
	}

	// Try the memory cache first
	gameListResult, paginationResult, cacheValid := getGameListCache(basicQuery,
		gamesCacheKey, paginationCacheKey)
	if cacheValid {
		return gameListResult, paginationResult, nil
	}

	var gameList Games
	// Create query
	q := QueryForGames(tx)

	// If a search criteria was defined, then also apply a fulltext search
	if search != "" {
		searchStr := strings.TrimSpace(search)
		if len(searchStr) > 0 {
			// Note: this is a fulltext search IN NATURAL LANGUAGE MODE.
			q = q.Where("MATCH (name, description) AGAINST (?)", searchStr)
		}
	}

	// Use pagination
	paginationResult, err := gz.PaginateQuery(q, &gameList, *p)
	if err != nil {
		em := gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
		return nil, nil, em
	}
	if !paginationResult.PageFound {
		em := gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
		return nil, nil, em
	}

	// Cache the result if it's a basic query.
	if basicQuery && globals.QueryCache != nil {
		ctx := context.Background()

		paginationBytes, paginationErr := json.Marshal(paginationResult)
		if paginationErr != nil {
			gz.LoggerFromContext(ctx).Error("Error marshalling pagination result", paginationErr)
		}
		gamesBytes, gamesErr := json.Marshal(&gameList)
		if gamesErr != nil {
			gz.LoggerFromContext(ctx).Error("Error marshalling games result", gamesErr)
		}

		if paginationErr == nil && gamesErr == nil {
			if err := globals.QueryCache.Set(&memcache.Item{Key: paginationCacheKey, Value: paginationBytes}); err != nil {
				gz.LoggerFromContext(ctx).Error("Error caching game pagination result", err)
			}
			if err := globals.QueryCache.Set(&memcache.Item{Key: gamesCacheKey, Value: gamesBytes}); err != nil {
				gz.LoggerFromContext(ctx).Error("Error caching game list result", err)
			}
		}
	}

	return &gameList, paginationResult, nil
}

// CreateGame adds a game to the catalog using the data from the given
// CreateGame struct. The archive named by FileName must already be present
// in the games bucket; alternatively DownloadURL points at an external
// host.
func (gs *Service) CreateGame(ctx context.Context, tx *gorm.DB,
	cg CreateGame) (*Game, *gz.ErrMsg) {

	if cg.FileName == "" && cg.DownloadURL == "" {
		return nil, gz.NewErrorMessageWithArgs(gz.ErrorMissingField, nil,
			[]string{"fileName", "downloadUrl"})
	}

	// Sanity check: game names are unique in the catalog.
	var existing Game
	q := tx.Where("name = ?", cg.Name).First(&existing)
	if q.Error != nil && !q.RecordNotFound() {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if existing.Name != nil {
		return nil, gz.NewErrorMessage(gz.ErrorResourceExists)
	}

	var size string
	if cg.FileName != "" {
		// Make sure the archive was actually uploaded.
		bytes, err := globals.Bucket.Size(ctx, cg.FileName)
		if err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorFileNotFound, err)
		}
		size = FormatBytes(bytes)
	}

	game := Game{
		Name:        &cg.Name,
		Emoji:       &cg.Emoji,
		Description: &cg.Description,
		Size:        &size,
		Executable:  &cg.Executable,
	}
	if cg.FileName != "" {
		game.FileName = &cg.FileName
	}
	if cg.DownloadURL != "" {
		game.DownloadURL = &cg.DownloadURL
	}

	if err := tx.Create(&game).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	ElasticSearchUpdateGame(ctx, game)
	invalidateGameListCache()

	gz.LoggerFromContext(ctx).Info("A new game has been added to the catalog. Name=",
		*game.Name, " ID=", game.ID)

	return &game, nil
}

// UpdateGame updates a catalog game.
func (gs *Service) UpdateGame(ctx context.Context, tx *gorm.DB, id uint,
	ug UpdateGame) (*Game, *gz.ErrMsg) {

	if ug.IsEmpty() {
		return nil, gz.NewErrorMessage(gz.ErrorFormInvalidValue)
	}

	game, em := gs.GetGame(tx, id)
	if em != nil {
		return nil, em
	}

	upd := tx.Model(game)
	// Edit the fields, if present.
	if ug.Name != nil {
		upd.Update("Name", *ug.Name)
	}
	if ug.Emoji != nil {
		upd.Update("Emoji", *ug.Emoji)
	}
	if ug.Description != nil {
		upd.Update("Description", *ug.Description)
	}
	if ug.FileName != nil {
		bytes, err := globals.Bucket.Size(ctx, *ug.FileName)
		if err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorFileNotFound, err)
		}
		size := FormatBytes(bytes)
		upd.Update("FileName", *ug.FileName)
		upd.Update("Size", size)
	}
	if ug.DownloadURL != nil {
		upd.Update("DownloadURL", *ug.DownloadURL)
	}
	if ug.Executable != nil {
		upd.Update("Executable", *ug.Executable)
	}

	ElasticSearchUpdateGame(ctx, *game)
	invalidateGameListCache()

	gz.LoggerFromContext(ctx).Info("Game updated. ID=", game.ID)
	return game, nil
}

// RemoveGame removes a game from the catalog (soft-delete). Library rows
// referencing the game are kept; listings naturally skip deleted games.
func (gs *Service) RemoveGame(ctx context.Context, tx *gorm.DB, id uint) *gz.ErrMsg {
	game, em := gs.GetGame(tx, id)
	if em != nil {
		return em
	}

	if err := tx.Delete(game).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}

	ElasticSearchRemoveGame(ctx, game)
	invalidateGameListCache()

	gz.LoggerFromContext(ctx).Info("Game removed from catalog. ID=", game.ID)
	return nil
}

// applyExpression updates a game using SQL expression that can perform operations on referred values.
func (gs *Service) applyExpression(tx *gorm.DB, game *Game, field string, expr *gorm.SqlExpr) *gz.ErrMsg {
	if err := tx.Model(game).Update(field, expr).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	return nil
}

// IncreaseDownloadCounter increases the current download count of a game.
func (gs *Service) IncreaseDownloadCounter(tx *gorm.DB, game *Game, delta uint) *gz.ErrMsg {
	return gs.applyExpression(tx, game, "downloads", gorm.Expr("downloads + ?", delta))
}

// ComputeAllCounters is an initialization function that iterates all games
// and updates their downloads counter, based on the number of records in
// the downloads ledger.
func (gs *Service) ComputeAllCounters(tx *gorm.DB) *gz.ErrMsg {
	var gameList Games
	if err := tx.Model(&Game{}).Unscoped().Find(&gameList).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	for _, game := range gameList {
		if _, em := gs.computeDownloadCounter(tx, &game); em != nil {
			return em
		}
	}
	return nil
}

// computeDownloadCounter counts the number of ledger records and updates
// the game accordingly.
// This query is VERY EXPENSIVE. Only use to set the state if it doesn't
// exist. For all other purposes, the use of IncreaseDownloadCounter is
// recommended.
func (gs *Service) computeDownloadCounter(tx *gorm.DB, game *Game) (int, *gz.ErrMsg) {
	// We use a raw SQL query because we can't use the downloads bundle due
	// to circular dependencies.
	var count int
	if err := tx.Table("downloads").Where("game_id = ?", game.ID).Count(&count).Error; err != nil {
		return 0, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	if err := tx.Model(game).Update("Downloads", count).Error; err != nil {
		return 0, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	return count, nil
}

// invalidateGameListCache drops the cached first catalog page after a
// catalog mutation.
func invalidateGameListCache() {
	if globals.QueryCache == nil {
		return
	}
	globals.QueryCache.Delete("games_list_games")
	globals.QueryCache.Delete("games_list_pagination")
}

// FormatBytes renders a byte count using the closest binary unit, with two
// decimals of precision.
func FormatBytes(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	value := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100
	return fmt.Sprintf("%g %s", value, sizes[i])
}
