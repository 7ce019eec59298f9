package users

import (
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// User information
//
// swagger:model
type User struct {
	gorm.Model

	// Identity is the JWT subject assigned to the user at registration.
	Identity *string `gorm:"not null;unique" json:"-"`

	// Username is unique in the launcher community
	Username *string `gorm:"not null;unique" json:"username,omitempty" validate:"required,min=3,alphanum,notinblacklist"`

	Email *string `gorm:"not null;unique" json:"email,omitempty" validate:"required,email"`

	// PasswordHash holds the bcrypt hash of the user password. It is never
	// included in REST responses.
	PasswordHash *string `json:"-"`

	// InstallPath is the directory where the launcher installs this user's
	// games.
	InstallPath *string `json:"install_path,omitempty"`
}

// Users is an slice of User
type Users []User

// LibraryEntry represents a game owned by a user. The unique index makes
// library membership a set.
type LibraryEntry struct {
	gorm.Model

	UserID uint `gorm:"not null;unique_index:idx_user_game"`
	GameID uint `gorm:"not null;unique_index:idx_user_game"`
}

// UserResponse stores user information used in REST responses.
//
// swagger:model
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// Game ids owned by the user, in the order they were granted.
	Library     []uint `json:"library"`
	InstallPath string `json:"installPath"`
	// True if the user is a system administrator
	SysAdmin bool `json:"sysAdmin"`
}

// RegistrationInput encapsulates the data needed to register a new user.
//
// swagger:model
type RegistrationInput struct {
	Username string `json:"username" validate:"required,min=3,alphanum,notinblacklist"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput encapsulates the credentials used to log in. Login accepts
// either the username or the email address.
//
// swagger:model
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the result of a successful login.
//
// swagger:model
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ByUsername queries a user by username.
func ByUsername(tx *gorm.DB, username string, deleted bool) (*User, *gz.ErrMsg) {
	q := tx
	if deleted {
		// Allow to search in already deleted users
		q = q.Unscoped()
	}
	var user User
	if q.Where("username = ?", username).First(&user); q.Error != nil && !q.RecordNotFound() {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if user.Username == nil {
		return nil, gz.NewErrorMessage(gz.ErrorUserUnknown)
	}
	return &user, nil
}

// ByIdentity queries a user by identity.
func ByIdentity(tx *gorm.DB, identity string, deleted bool) (*User, *gz.ErrMsg) {
	q := tx
	if deleted {
		// Allow to search in already deleted users
		q = q.Unscoped()
	}
	var aUser User
	if q.Where("identity = ?", identity).First(&aUser); q.Error != nil && !q.RecordNotFound() {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if aUser.Identity == nil || *aUser.Identity != identity {
		return nil, gz.NewErrorMessage(gz.ErrorAuthNoUser)
	}
	return &aUser, nil
}

// ByUsernameOrEmail queries a user by username or email address. Login
// forms accept either one in the same field.
func ByUsernameOrEmail(tx *gorm.DB, login string) (*User, *gz.ErrMsg) {
	var user User
	q := tx.Where("username = ? OR email = ?", login, login).First(&user)
	if q.Error != nil && !q.RecordNotFound() {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if user.Username == nil {
		return nil, gz.NewErrorMessage(gz.ErrorUserUnknown)
	}
	return &user, nil
}

// ByEmail queries a user by email address.
func ByEmail(tx *gorm.DB, email string, deleted bool) (*User, *gz.ErrMsg) {
	q := tx
	if deleted {
		q = q.Unscoped()
	}
	var user User
	if q.Where("email = ?", email).First(&user); q.Error != nil && !q.RecordNotFound() {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if user.Email == nil {
		return nil, gz.NewErrorMessage(gz.ErrorUserUnknown)
	}
	return &user, nil
}
