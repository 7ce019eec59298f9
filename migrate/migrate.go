package migrate

import (
	"context"
	"log"
	"strconv"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"

	"github.com/mlx-launcher/mlx/bundles/downloads"
	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/bundles/users"
	"github.com/mlx-launcher/mlx/globals"
	"github.com/mlx-launcher/mlx/permissions"
)

// RecomputeDownloadCounters updates all games and sets their download
// counter from the download records table.
// This migration script only runs if the MLX_MIGRATE_RESET_DOWNLOADS env
// var is set with value 'true'.
func RecomputeDownloadCounters(ctx context.Context, db *gorm.DB) {
	migrate, _ := gz.ReadEnvVar("MLX_MIGRATE_RESET_DOWNLOADS")
	if value, err := strconv.ParseBool(migrate); err != nil || !value {
		return
	}
	log.Println("[MIGRATION] Running 'Recompute Download Counters' migration script")
	tx := db.Begin()

	if em := (&games.Service{}).ComputeAllCounters(tx); em != nil {
		tx.Rollback()
		log.Fatal("[MIGRATION] Error while recomputing download counters", em.BaseError)
	}

	if err := tx.Commit().Error; err != nil {
		log.Fatal("[MIGRATION] Error while recomputing download counters", err)
	}
	log.Println("[MIGRATION] Successfully finished 'Recompute Download Counters' migration script")
}

// CasbinPermissions adds write permissions to owners of existent download
// records.
// This migration script only runs if the MLX_MIGRATE_CASBIN env var is set
// with value 'true'.
// NOTE: This script is expected to be run just once on each server.
func CasbinPermissions(ctx context.Context, db *gorm.DB) {
	migrate, _ := gz.ReadEnvVar("MLX_MIGRATE_CASBIN")
	if value, err := strconv.ParseBool(migrate); err != nil || !value {
		return
	}
	log.Println("[MIGRATION] Running Casbin Permissions migration script")
	q := db

	// Map user ids to usernames.
	var userList users.Users
	if err := q.Model(&users.User{}).Unscoped().Find(&userList).Error; err != nil {
		log.Fatal("[MIGRATION] Error finding users to add permissions", err)
	}
	usernames := make(map[uint]string, len(userList))
	for _, u := range userList {
		usernames[u.ID] = *u.Username
	}

	var downloadList downloads.Downloads
	if err := q.Model(&downloads.Download{}).Unscoped().Find(&downloadList).Error; err != nil {
		log.Fatal("[MIGRATION] Error finding downloads to add permissions", err)
	}
	for _, d := range downloadList {
		username, found := usernames[*d.UserID]
		if !found {
			continue
		}
		globals.Permissions.AddPermission(username, *d.UUID, permissions.Write)
	}
}
