package users

import (
	"context"
	"os"
	"path"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlx-launcher/mlx/cmd/token-generator/generator"
	"github.com/mlx-launcher/mlx/globals"
)

// bcryptCost is the work factor used to hash passwords.
const bcryptCost = 10

// CreateUser registers a new user using the data from the given
// RegistrationInput. The new user gets a random identity, a hashed
// password and a default install path.
// Returns a UserResponse.
func CreateUser(ctx context.Context, tx *gorm.DB, ri *RegistrationInput) (*UserResponse, *gz.ErrMsg) {
	// Sanity check: Make sure that the claimed username was not already used,
	// even by removed users.
	aUser, em := ByUsername(tx, ri.Username, true)
	if em != nil && em.ErrCode != gz.ErrorUserUnknown {
		return nil, em
	}
	if aUser != nil {
		return nil, gz.NewErrorMessage(gz.ErrorResourceExists)
	}
	// Same check for the email address.
	aUser, em = ByEmail(tx, ri.Email, true)
	if em != nil && em.ErrCode != gz.ErrorUserUnknown {
		return nil, em
	}
	if aUser != nil {
		return nil, gz.NewErrorMessage(gz.ErrorResourceExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(ri.Password), bcryptCost)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
	}

	identity := uuid.NewV4().String()
	hashStr := string(hash)
	installPath := defaultInstallPath()
	u := User{
		Identity:     &identity,
		Username:     &ri.Username,
		Email:        &ri.Email,
		PasswordHash: &hashStr,
		InstallPath:  &installPath,
	}

	if err := tx.Create(&u).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	ur := CreateUserResponse(tx, &u)
	gz.LoggerFromContext(ctx).Info("A new user has been created. Username=",
		*u.Username, " Email=", *u.Email)

	return &ur, nil
}

// Login verifies the given credentials and, on success, returns a signed
// access token together with the user data.
// An unknown username and a wrong password return the exact same error, so
// callers cannot probe which accounts exist.
func Login(ctx context.Context, tx *gorm.DB, li *LoginInput) (*LoginResponse, *gz.ErrMsg) {
	user, em := ByUsernameOrEmail(tx, li.Username)
	if em != nil {
		if em.ErrCode == gz.ErrorUserUnknown {
			return nil, gz.NewErrorMessage(gz.ErrorUnauthorized)
		}
		return nil, em
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash),
		[]byte(li.Password)); err != nil {
		return nil, gz.NewErrorMessage(gz.ErrorUnauthorized)
	}

	token, em := accessToken(user)
	if em != nil {
		return nil, em
	}

	gz.LoggerFromContext(ctx).Info("User logged in. Username=", *user.Username)

	return &LoginResponse{
		Token: token,
		User:  CreateUserResponse(tx, user),
	}, nil
}

// accessToken creates a signed RS256 token for the given user. The token
// subject is the user identity, so the standard JWT middleware can resolve
// the user on secure routes.
func accessToken(user *User) (string, *gz.ErrMsg) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   *user.Identity,
		"admin": globals.Permissions.IsSystemAdmin(*user.Username),
		"iat":   now.Unix(),
		"exp":   now.AddDate(0, 0, globals.TokenExpirationDays).Unix(),
	}
	token, err := generator.GenerateTokenRSA256(globals.AuthPrivateKey, claims)
	if err != nil {
		return "", gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
	}
	return token, nil
}

// AddToLibrary grants a game to the user's library. When failIfPresent is
// true and the game is already in the library, an ErrorResourceExists is
// returned. Otherwise the grant is an idempotent set-add.
func AddToLibrary(ctx context.Context, tx *gorm.DB, user *User, gameID uint,
	failIfPresent bool) *gz.ErrMsg {

	var entry LibraryEntry
	q := tx.Where("user_id = ? AND game_id = ?", user.ID, gameID).First(&entry)
	if q.Error != nil && !q.RecordNotFound() {
		return gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, q.Error)
	}
	if entry.UserID == user.ID && entry.GameID == gameID {
		if failIfPresent {
			return gz.NewErrorMessage(gz.ErrorResourceExists)
		}
		return nil
	}

	entry = LibraryEntry{UserID: user.ID, GameID: gameID}
	if err := tx.Create(&entry).Error; err != nil {
		return gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}

	gz.LoggerFromContext(ctx).Info("Game added to library. Username=",
		*user.Username, " GameID=", gameID)
	return nil
}

// LibraryGameIDs returns the ids of the games in the user's library, in
// the order they were granted.
func LibraryGameIDs(tx *gorm.DB, user *User) ([]uint, *gz.ErrMsg) {
	var entries []LibraryEntry
	if err := tx.Where("user_id = ?", user.ID).Order("id").Find(&entries).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.GameID)
	}
	return ids, nil
}

// CreateUserResponse creates a new UserResponse struct based on the given
// User object.
func CreateUserResponse(tx *gorm.DB, user *User) UserResponse {
	var response UserResponse

	response.ID = user.ID
	response.Username = *user.Username
	response.Email = *user.Email
	if user.InstallPath != nil {
		response.InstallPath = *user.InstallPath
	}
	response.SysAdmin = globals.Permissions.IsSystemAdmin(*user.Username)

	response.Library = make([]uint, 0)
	if ids, em := LibraryGameIDs(tx, user); em == nil {
		response.Library = ids
	}

	return response
}

// defaultInstallPath computes the directory games get installed into when
// the user has not picked one.
func defaultInstallPath() string {
	base := os.Getenv("APPDATA")
	if base == "" {
		base, _ = os.UserHomeDir()
	}
	return path.Join(base, "MLXGames")
}
