package downloads

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Statuses a ledger record can be in. The status is reported by the
// launcher client as its install workflow advances; Installed is terminal.
const (
	StatusReady       string = "ready"
	StatusDownloading string = "downloading"
	StatusDownloaded  string = "downloaded"
	StatusExtracting  string = "extracting"
	StatusInstalled   string = "installed"
	StatusFailed      string = "failed"
)

// validStatuses is the accepted status vocabulary.
var validStatuses = []string{
	StatusReady,
	StatusDownloading,
	StatusDownloaded,
	StatusExtracting,
	StatusInstalled,
	StatusFailed,
}

// ValidStatus returns true if the given string is a known status.
func ValidStatus(s string) bool {
	for _, v := range validStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Download represents a single entry of the downloads ledger. Records are
// created when a user requests a download link and are never deleted.
//
// swagger:model dbDownload
type Download struct {
	// Override default GORM Model fields
	ID        uint      `gorm:"primary_key" json:"-"`
	CreatedAt time.Time `gorm:"type:timestamp(3) NULL" json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
	DeletedAt *time.Time `sql:"index" json:"-"`

	// Public unique identifier of the record
	UUID *string `gorm:"not null;unique" json:"id,omitempty"`

	// The ID of the user that requested the download
	UserID *uint `json:"userId,omitempty"`

	// The ID of the downloaded game
	GameID *uint `json:"gameId,omitempty"`

	// Fields denormalized from the catalog at creation time, so the record
	// stays meaningful even if the game is later removed.
	GameName   *string `json:"gameName,omitempty"`
	FileName   *string `json:"fileName,omitempty"`
	Executable *string `json:"executable,omitempty"`

	// Resolved link the client fetches the archive from
	DownloadLink *string `json:"downloadLink,omitempty"`

	// Client reported status
	Status *string `json:"status,omitempty"`

	// Client reported progress percentage (0-100)
	Progress int `json:"progress"`

	// Where the client installed the game. Reported on completion.
	InstallPath *string `json:"installPath,omitempty"`

	// Date and time the install was reported complete
	InstalledAt *time.Time `json:"installedAt,omitempty"`
}

// Downloads is an array of Download
type Downloads []Download

// ByUUID queries a Download by its public id.
func ByUUID(tx *gorm.DB, uuidStr string) (*Download, error) {
	var download Download
	if err := tx.Where("uuid = ?", uuidStr).First(&download).Error; err != nil {
		return nil, err
	}
	return &download, nil
}

// CreateDownload encapsulates the data required to create a ledger record
type CreateDownload struct {
	// The id of the game to download
	// required: true
	GameID uint `json:"gameId" validate:"required" form:"gameId"`
}

// CompleteDownload encapsulates the data the client reports when an
// install finished
type CompleteDownload struct {
	// The public id of the ledger record
	// required: true
	DownloadID string `json:"downloadId" validate:"required" form:"downloadId"`
	// The directory the game was installed into
	// required: true
	InstallPath string `json:"installPath" validate:"required" form:"installPath"`
}

// UpdateProgress encapsulates a client progress report
type UpdateProgress struct {
	// required: true
	Status string `json:"status" validate:"required" form:"status"`
	// Progress percentage
	Progress int `json:"progress" validate:"gte=0,lte=100" form:"progress"`
}
