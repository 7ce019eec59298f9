package games

// Import this file's dependencies
import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"

	"github.com/mlx-launcher/mlx/globals"
)

// This is the structure of the data stored in the games index.
type gameElastic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Executable  string `json:"executable,omitempty"`
}

// ElasticSearchRemoveGame removes a game from elastic search
func ElasticSearchRemoveGame(ctx context.Context, game *Game) {
	if globals.ElasticSearch == nil {
		return
	}

	// Set up the request object.
	req := esapi.DeleteRequest{
		Index:      "launcher_games",
		DocumentID: strconv.FormatUint(uint64(game.ID), 10),
		Refresh:    "true",
	}

	// Perform the request with the client.
	_, err := req.Do(context.Background(), globals.ElasticSearch)
	if err != nil {
		gz.LoggerFromContext(ctx).Critical("Error getting response:", err)
	}
}

// ElasticSearchUpdateGame will update ElasticSearch with a single game.
func ElasticSearchUpdateGame(ctx context.Context, game Game) {
	if globals.ElasticSearch == nil {
		return
	}

	// Build the ElasticSearch struct.
	g := gameElastic{
		Name: *game.Name,
	}
	if game.Description != nil {
		g.Description = *game.Description
	}
	if game.Executable != nil {
		g.Executable = *game.Executable
	}

	// Create the json representation
	jsonGame, _ := json.Marshal(&g)

	// Set up the request object.
	req := esapi.IndexRequest{
		Index:      "launcher_games",
		DocumentID: strconv.FormatUint(uint64(game.ID), 10),
		Body:       strings.NewReader(string(jsonGame)),
		Refresh:    "true",
	}

	// Perform the request with the client.
	add, err := req.Do(context.Background(), globals.ElasticSearch)
	if err != nil {
		gz.LoggerFromContext(ctx).Critical("Error getting response:", err)
		return
	}
	defer add.Body.Close()

	if add.IsError() {
		gz.LoggerFromContext(ctx).Error("[", add.Status(), "] Error indexing document ID:", game.ID)
	} else {
		// Deserialize the response into a map.
		var r map[string]interface{}
		if err := json.NewDecoder(add.Body).Decode(&r); err != nil {
			gz.LoggerFromContext(ctx).Error("Error parsing the response body:", err)
		} else {
			// Print the response status and indexed document version.
			gz.LoggerFromContext(ctx).Debug("[", add.Status(), "] ", r["result"], "; version=", int(r["_version"].(float64)))
		}
	}
}

// ElasticSearchUpdateAll will update ElasticSearch with all the games in
// the SQL database.
func ElasticSearchUpdateAll(ctx context.Context, tx *gorm.DB) {
	if globals.ElasticSearch == nil {
		return
	}

	// Make sure that we have a Game table.
	if hasTable := tx.HasTable(&Game{}); hasTable {
		var gameList Games

		// Get all the games
		tx.Find(&gameList)

		// Add each game to ElasticSearch.
		for _, game := range gameList {
			ElasticSearchUpdateGame(ctx, game)
		}
	}
}
