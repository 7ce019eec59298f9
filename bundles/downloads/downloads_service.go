package downloads

import (
	"context"
	"time"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	uuid "github.com/satori/go.uuid"

	"github.com/mlx-launcher/mlx/bundles/games"
	"github.com/mlx-launcher/mlx/bundles/users"
	"github.com/mlx-launcher/mlx/globals"
	"github.com/mlx-launcher/mlx/permissions"
)

// Service is the main struct exported by this Downloads Service.
type Service struct {
	// Games gives access to the catalog when resolving download links.
	Games *games.Service
}

// CreateDownload creates a new ledger record for the given game and user.
// The returned record carries the resolved download link: a bucket link
// for archives we host, or the game's external URL.
// The baseURL argument is the scheme and host the request came in on, used
// to build links served by this same server.
func (ds *Service) CreateDownload(ctx context.Context, tx *gorm.DB,
	cd CreateDownload, baseURL string, user *users.User) (*Download, *gz.ErrMsg) {

	game, em := ds.Games.GetGame(tx, cd.GameID)
	if em != nil {
		return nil, em
	}

	var link string
	if game.FileName != nil && *game.FileName != "" {
		var err error
		link, err = globals.Bucket.DownloadLink(ctx, *game.FileName, baseURL)
		if err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
		}
	} else if game.DownloadURL != nil {
		link = *game.DownloadURL
	} else {
		return nil, gz.NewErrorMessage(gz.ErrorZipNotAvailable)
	}

	uuidStr := uuid.NewV4().String()
	status := StatusReady
	download := Download{
		UUID:         &uuidStr,
		UserID:       &user.ID,
		GameID:       &game.ID,
		GameName:     game.Name,
		FileName:     game.FileName,
		Executable:   game.Executable,
		DownloadLink: &link,
		Status:       &status,
	}

	if err := tx.Create(&download).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	// The requesting user owns the record; nobody else can complete it.
	if ok, em := globals.Permissions.AddPermission(*user.Username, uuidStr,
		permissions.Write); !ok {
		return nil, em
	}

	if em := ds.Games.IncreaseDownloadCounter(tx, game, 1); em != nil {
		return nil, em
	}

	gz.LoggerFromContext(ctx).Info("Download created. UUID=", uuidStr,
		" GameID=", game.ID, " Username=", *user.Username)

	return &download, nil
}

// DownloadList returns the paginated ledger records of the given user, in
// creation order.
func (ds *Service) DownloadList(p *gz.PaginationRequest, tx *gorm.DB,
	user *users.User) (*Downloads, *gz.PaginationResult, *gz.ErrMsg) {

	var downloadList Downloads
	q := tx.Model(&Download{}).Where("user_id = ?", user.ID).Order("id")

	pagination, err := gz.PaginateQuery(q, &downloadList, *p)
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorInvalidPaginationRequest, err)
	}
	if !pagination.PageFound {
		return nil, nil, gz.NewErrorMessage(gz.ErrorPaginationPageNotFound)
	}

	return &downloadList, pagination, nil
}

// GetDownload returns a ledger record owned by the given user.
func (ds *Service) GetDownload(tx *gorm.DB, uuidStr string,
	user *users.User) (*Download, *gz.ErrMsg) {

	download, err := ByUUID(tx, uuidStr)
	if err != nil {
		return nil, gz.NewErrorMessageWithArgs(gz.ErrorIDNotFound, err,
			[]string{uuidStr})
	}

	// Ownership check. System admins pass too.
	if ok, em := globals.Permissions.IsAuthorized(*user.Username,
		*download.UUID, permissions.Write); !ok {
		return nil, em
	}

	return download, nil
}

// Complete marks a ledger record as installed and grants the game to the
// user's library. The grant is an idempotent set-add, so reporting the
// same completion twice leaves a single library row.
func (ds *Service) Complete(ctx context.Context, tx *gorm.DB,
	cd CompleteDownload, user *users.User) (*Download, *gz.ErrMsg) {

	download, em := ds.GetDownload(tx, cd.DownloadID, user)
	if em != nil {
		return nil, em
	}

	now := time.Now()
	status := StatusInstalled
	upd := tx.Model(download)
	upd.Update("Status", status)
	upd.Update("Progress", 100)
	upd.Update("InstallPath", cd.InstallPath)
	upd.Update("InstalledAt", now)
	if upd.Error != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, upd.Error)
	}

	if em := users.AddToLibrary(ctx, tx, user, *download.GameID, false); em != nil {
		return nil, em
	}

	gz.LoggerFromContext(ctx).Info("Install completed. UUID=", *download.UUID,
		" GameID=", *download.GameID, " InstallPath=", cd.InstallPath)

	return download, nil
}

// UpdateStatus persists a client progress report on a ledger record.
// Installed records are terminal and reject further reports.
func (ds *Service) UpdateStatus(ctx context.Context, tx *gorm.DB,
	uuidStr string, up UpdateProgress, user *users.User) (*Download, *gz.ErrMsg) {

	if !ValidStatus(up.Status) {
		return nil, gz.NewErrorMessageWithArgs(gz.ErrorFormInvalidValue, nil,
			[]string{"status"})
	}

	download, em := ds.GetDownload(tx, uuidStr, user)
	if em != nil {
		return nil, em
	}

	if download.Status != nil && *download.Status == StatusInstalled {
		return nil, gz.NewErrorMessageWithArgs(gz.ErrorFormInvalidValue, nil,
			[]string{"status"})
	}

	upd := tx.Model(download)
	upd.Update("Status", up.Status)
	upd.Update("Progress", up.Progress)
	if upd.Error != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, upd.Error)
	}

	return download, nil
}
