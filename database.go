package main

// Import this file's dependencies
import (
	"context"
	"log"

	"github.com/gazebo-web/gz-go/v7"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"

	"github.com/mlx-launcher/mlx/bundles/downloads"
	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/bundles/users"
	"github.com/mlx-launcher/mlx/globals"
)

// DBMigrate auto migrates database tables
func DBMigrate(ctx context.Context, db *gorm.DB) {
	// Note about Migration from GORM doc: http://jinzhu.me/gorm/database.html#migration
	//
	// WARNING: AutoMigrate will ONLY create tables, missing columns and missing indexes,
	// and WON'T change existing column's type or delete unused columns to protect your data.
	//

	if db != nil {
		db.AutoMigrate(
			&gz.AccessToken{},
			&users.User{},
			&users.LibraryEntry{},
			&games.Game{},
			&downloads.Download{},
			&ElasticSearchConfig{},
			globals.Permissions.DBTable(),
		)
	}
}

// DBDropTables drops all tables from DB. Used by tests.
func DBDropTables(ctx context.Context, db *gorm.DB) {
	if db != nil {
		db.DropTableIfExists(
			&downloads.Download{},
			&users.LibraryEntry{},
			&games.Game{},
			&users.User{},
			&gz.AccessToken{},
			&ElasticSearchConfig{},
			globals.Permissions.DBTable(),
		)
	}
}

// DBAddDefaultData seeds the catalog when it is empty.
func DBAddDefaultData(ctx context.Context, db *gorm.DB) {
	if db == nil {
		return
	}
	if hasTable := db.HasTable(&games.Game{}); !hasTable {
		return
	}

	var count int
	if err := db.Model(&games.Game{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	name := "my summer car"
	emoji := "💻"
	description := "test"
	downloadURL := "https://drive.google.com/uc?export=download&id=1kHwV-CIXxmYIhI6YVofFA4X83bzhdzDl"
	executable := "setup.exe"
	game := games.Game{
		Name:        &name,
		Emoji:       &emoji,
		Description: &description,
		DownloadURL: &downloadURL,
		Executable:  &executable,
	}
	db.Create(&game)
}

// DBAddCustomIndexes allows application to add custom indexes that cannot be added automatically
// by GORM.
func DBAddCustomIndexes(ctx context.Context, db *gorm.DB) {
	db.Model(&users.LibraryEntry{}).AddForeignKey("user_id", "users(id)", "RESTRICT", "RESTRICT")
	db.Model(&downloads.Download{}).AddForeignKey("user_id", "users(id)", "RESTRICT", "RESTRICT")

	// Fulltext index used by the catalog's backup search.
	found, err := indexIsPresent(db, "games", "games_fulltext")
	if err != nil {
		gz.LoggerFromContext(ctx).Critical("Error with DB while checking index", err)
		log.Fatal("Error with DB while checking index", err)
		return
	}
	if !found {
		db.Exec("ALTER TABLE games ADD FULLTEXT games_fulltext (name, description);")
	}
	// TIP: You can check created indexes by executing in mysql: `show index from games;`
}

// indexIsPresent returns true if the index with name idxName already exists in the given table
func indexIsPresent(db *gorm.DB, table string, idxName string) (bool, error) {
	// Raw SQL
	rows, err := db.Raw("select * from information_schema.statistics where table_schema=database() and table_name=? and index_name=?;",
		table, idxName).Rows() //(*sql.Rows, error)
	defer rows.Close()
	if err != nil {
		return false, err
	}
	return rows.Next(), nil
}
