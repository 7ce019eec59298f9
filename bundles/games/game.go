package games

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Game represents a single entry in the launcher catalog.
//
// swagger:model dbGame
type Game struct {
	// Override default GORM Model fields
	ID        uint      `gorm:"primary_key" json:"id"`
	CreatedAt time.Time `gorm:"type:timestamp(3) NULL" json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
	// Soft delete keeps the row around, so auto increment ids are never
	// reused for new games.
	DeletedAt *time.Time `sql:"index" json:"-"`

	// The name of the game
	Name *string `gorm:"not null;unique" json:"name,omitempty"`

	// Emoji shown next to the name in the launcher UI
	Emoji *string `json:"emoji,omitempty"`

	// A description of the game (max 65,535 chars)
	Description *string `gorm:"type:text" json:"description,omitempty"`

	// Human friendly size of the archive, eg. "30.5 MB"
	Size *string `json:"size,omitempty"`

	// Number of downloads
	Downloads int `json:"downloads"`

	// Average rating. Reserved; the launcher UI shows it but nothing sets it.
	Rating int `json:"rating"`

	// Name of the archive stored in the games bucket. Empty when the game is
	// served from an external DownloadURL instead.
	FileName *string `json:"fileName,omitempty"`

	// External download URL. Used when the archive is not hosted by us.
	DownloadURL *string `json:"downloadUrl,omitempty"`

	// Executable to run once the game is installed
	Executable *string `json:"executable,omitempty"`
}

// Games is an array of Game
type Games []Game

// QueryForGames returns a gorm query configured to query Games in catalog
// (insertion) order.
func QueryForGames(q *gorm.DB) *gorm.DB {
	return q.Model(&Game{}).Order("id")
}

// ByID queries a Game by id.
func ByID(tx *gorm.DB, id uint) (*Game, error) {
	var game Game
	if err := tx.Where("id = ?", id).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// CreateGame encapsulates data required to add a game to the catalog
type CreateGame struct {
	// The name of the Game
	// required: true
	Name string `json:"name" validate:"required,min=3,alphanumspace" form:"name"`
	// Emoji shown in the launcher UI
	Emoji string `json:"emoji" form:"emoji"`
	// Optional description
	Description string `json:"description" form:"description"`
	// Name of an archive previously uploaded to the games bucket. Either
	// this or DownloadURL must be set.
	FileName string `json:"fileName" validate:"omitempty,noforwardslash,nopercent" form:"fileName"`
	// External download URL
	DownloadURL string `json:"downloadUrl" validate:"omitempty,url" form:"downloadUrl"`
	// Executable to run once installed
	// required: true
	Executable string `json:"executable" validate:"required" form:"executable"`
}

// UpdateGame encapsulates data that can be updated in a game
type UpdateGame struct {
	// Optional name
	Name *string `json:"name" validate:"omitempty,min=3,alphanumspace" form:"name"`
	// Optional emoji
	Emoji *string `json:"emoji" form:"emoji"`
	// Optional description
	Description *string `json:"description" form:"description"`
	// Optional archive name
	FileName *string `json:"fileName" validate:"omitempty,noforwardslash,nopercent" form:"fileName"`
	// Optional external download URL
	DownloadURL *string `json:"downloadUrl" validate:"omitempty,url" form:"downloadUrl"`
	// Optional executable
	Executable *string `json:"executable" form:"executable"`
}

// IsEmpty returns true is the struct is empty.
func (ug UpdateGame) IsEmpty() bool {
	return ug.Name == nil && ug.Emoji == nil && ug.Description == nil &&
		ug.FileName == nil && ug.DownloadURL == nil && ug.Executable == nil
}
