package main

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-playground/form"
	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	"gopkg.in/go-playground/validator.v9"

	"github.com/mlx-launcher/mlx/bundles/users"
	"github.com/mlx-launcher/mlx/globals"
)

// NoResult is a middleware that adapts a gz.HandlerWithResult into a gz.Handler.
func NoResult(handler gz.HandlerWithResult) gz.Handler {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) *gz.ErrMsg {
		_, em := handler(tx, w, r)
		return em
	}
}

// searchFnHandler defines the signature for handlers that accept
// search arguments and return paginated results.
// Arguments:
// p: a pagination request to use.
// search: the search query in the router (eg. q=)
// user: the user requesting the operation (based on JWT).
// Returns: The searchFnHandler is expected to return paginated results.
type searchFnHandler func(p *gz.PaginationRequest, search string,
	user *users.User, tx *gorm.DB, w http.ResponseWriter,
	r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg)

// SearchHandler is a middleware handler that wraps a searchFnHandler and
// invokes it with the following extra arguments:
// - p: a configured pagination request
// - search: got from the URL Query parameters.
// - user: the user requesting the operation. Got from the JWT.
// It returns the list of matched resources, and also writes the pagination
// headers into the HTTP response.
func SearchHandler(handler searchFnHandler) gz.HandlerWithResult {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
		// Prepare pagination
		pr, errMsg := gz.NewPaginationRequest(r)
		if errMsg != nil {
			return nil, errMsg
		}

		// Get JWT user
		// it is ok for user to be nil
		user, ok, em2 := getUserFromJWT(tx, r)
		if !ok && (em2.ErrCode != gz.ErrorAuthJWTInvalid &&
			em2.ErrCode != gz.ErrorAuthNoUser) {
			return nil, &em2
		}

		search := r.URL.Query().Get("q")

		var list interface{}
		var pagination *gz.PaginationResult
		var eMsg *gz.ErrMsg

		// Assume that we will need to use the backup search.
		backupSearch := true

		// Do we have a search term and Elastic Search? If so, then let's use it.
		if len(search) > 0 && globals.ElasticSearch != nil {
			list, pagination, eMsg = elasticSearch(gamesIndex, pr, search, tx, w, r)

			// Do we need to fallback on our backup search?
			backupSearch = eMsg != nil
		}

		// Fallback on SQL based search if Elastic Search failed or Elastic Search
		// is not present.
		if backupSearch {
			list, pagination, eMsg = handler(pr, search, user, tx, w, r)
		}

		if eMsg != nil {
			return nil, eMsg
		}

		if pagination != nil {
			err := gz.WritePaginationHeaders(*pagination, w, r)
			if err != nil {
				return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
			}
		}

		return list, nil
	}
}

type pagHandler func(p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg)

// PaginationHandlerWithUser is a middleware handler that wraps a pagHandler
// function and invokes it with the following extra arguments:
// - p: a configured pagination request
// - user: the user requesting the operation. Got from the JWT.
// If failIfNoUser is true the middleware will fail if the JWT does not
// represent a valid user. Otherwise will pass 'nil' to the inner handler.
// It returns the list of resources, and also writes the pagination
// headers into the HTTP response.
func PaginationHandlerWithUser(handler pagHandler, failIfNoUser bool) gz.HandlerWithResult {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

		// Prepare pagination
		pr, em := gz.NewPaginationRequest(r)
		if em != nil {
			return nil, em
		}

		// Get JWT user
		user, ok, errMsg := getUserFromJWT(tx, r)
		if !ok && (failIfNoUser || (errMsg.ErrCode != gz.ErrorAuthJWTInvalid &&
			errMsg.ErrCode != gz.ErrorAuthNoUser)) {
			return nil, &errMsg
		}

		list, pagination, em := handler(pr, user, tx, w, r)
		if em != nil {
			return nil, em
		}

		err := gz.WritePaginationHeaders(*pagination, w, r)
		if err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
		}
		return list, nil
	}
}

// PaginationHandler is a middleware handler that wraps a pagHandler function and
// invokes it with a configured pagination request and the JWT user, if any.
func PaginationHandler(handler pagHandler) gz.HandlerWithResult {
	return PaginationHandlerWithUser(handler, false)
}

type idFn func(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg)

// IDHandler is a middleware handler that wraps an idFn function and
// invokes it with the following extra arguments:
// - id: the numeric id got from the route.
// - user: the user requesting the operation. Can be nil. Got from the JWT.
// Note: if the failIfNoUser is true, this handler will return errors if the JWT
// is invalid or does not exist in DB. Otherwise, if false, the user will be nil.
// It returns the result from invoking the inner handler.
func IDHandler(idArg string, failIfNoUser bool, handler idFn) gz.HandlerWithResult {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
		// Extract the user associated with the JWT, if any.
		user, ok, errMsg := getUserFromJWT(tx, r)
		if !ok && ((errMsg.ErrCode != gz.ErrorAuthJWTInvalid &&
			errMsg.ErrCode != gz.ErrorAuthNoUser) || failIfNoUser) {
			return nil, &errMsg
		}

		// Get the resource id
		params := mux.Vars(r)
		idStr, valid := params[idArg]
		if !valid {
			return nil, gz.NewErrorMessage(gz.ErrorIDNotInRequest)
		}
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorIDNotInRequest, err)
		}

		result, em := handler(uint(id), user, tx, w, r)
		if em != nil {
			return nil, em
		}
		return result, nil
	}
}

type nameFn func(name string, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg)

// NameHandler is a middleware handler that wraps a nameFn function and
// invokes it with the following extra arguments:
// - name: the name got from the route.
// - user: the user requesting the operation. Can be nil. Got from the JWT.
// Note: if the failIfNoUser is true, this handler will return errors if the JWT
// is invalid or does not exist in DB. Otherwise, if false, the user will be nil.
// It returns the result from invoking the inner handler.
func NameHandler(nameArg string, failIfNoUser bool,
	handler nameFn) gz.HandlerWithResult {

	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
		// Extract the user associated with the JWT, if any.
		user, ok, errMsg := getUserFromJWT(tx, r)
		if !ok && ((errMsg.ErrCode != gz.ErrorAuthJWTInvalid &&
			errMsg.ErrCode != gz.ErrorAuthNoUser) || failIfNoUser) {
			return nil, &errMsg
		}

		// Get the resource name
		params := mux.Vars(r)
		name, valid := params[nameArg]
		// If the name does not exist
		if !valid {
			return nil, gz.NewErrorMessage(gz.ErrorNameWrongFormat)
		}

		result, em := handler(name, user, tx, w, r)
		if em != nil {
			return nil, em
		}
		return result, nil
	}
}

// ParseStruct reads the http request and decodes sent values
// into the given struct. It uses the isForm bool to know if the values comes
// as "request.Form" values or as "request.Body".
// It also calls validator to validate the struct fields.
func ParseStruct(s interface{}, r *http.Request, isForm bool) *gz.ErrMsg {
	// TODO: stop using globals. Move to own packages.
	if isForm {
		if errs := globals.FormDecoder.Decode(s, r.Form); errs != nil {
			return gz.NewErrorMessageWithArgs(gz.ErrorFormInvalidValue, errs,
				getDecodeErrorsExtraInfo(errs))
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(s); err != nil {
			return gz.NewErrorMessageWithBase(gz.ErrorUnmarshalJSON, err)
		}
	}
	// Validate struct values
	if em := ValidateStruct(s); em != nil {
		return em
	}
	return nil
}

// ValidateStruct Validate struct values using golang validator.v9
func ValidateStruct(s interface{}) *gz.ErrMsg {
	if errs := globals.Validate.Struct(s); errs != nil {
		return gz.NewErrorMessageWithArgs(gz.ErrorFormInvalidValue, errs,
			getValidationErrorsExtraInfo(errs))
	}
	return nil
}

// Builds the ErrMsg extra info from the given DecodeErrors
func getDecodeErrorsExtraInfo(err error) []string {
	errs := err.(form.DecodeErrors)
	extra := make([]string, 0, len(errs))
	for field, er := range errs {
		extra = append(extra, fmt.Sprintf("Field: %s. %v", field, er.Error()))
	}
	return extra
}

// Builds the ErrMsg extra info from the given ValidationErrors
func getValidationErrorsExtraInfo(err error) []string {
	validationErrors := err.(validator.ValidationErrors)
	extra := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		extra = append(extra, fmt.Sprintf("%s:%v", fe.StructField(), fe.Value()))
	}
	return extra
}

// getUserFromJWT returns the User associated to the http request's JWT token.
// This function can return ErrorAuthJWTInvalid if the token cannot be
// read, or ErrorAuthNoUser no user with such identity exists in the DB.
func getUserFromJWT(tx *gorm.DB, r *http.Request) (*users.User, bool, gz.ErrMsg) {
	var user *users.User

	// Check if a Private-Token is used, which will supercede a JWT token.
	if token := r.Header.Get("Private-Token"); len(token) > 0 {
		var accessToken *gz.AccessToken
		var err *gz.ErrMsg
		if accessToken, err = gz.ValidateAccessToken(token, tx); err != nil {
			return nil, false, gz.ErrorMessage(gz.ErrorUnauthorized)
		}

		user = new(users.User)
		if err := tx.Where("id = ?", accessToken.UserID).First(user).Error; err != nil {
			return nil, false, *gz.NewErrorMessage(gz.ErrorUnauthorized)
		}
	} else {
		identity, valid := gz.GetUserIdentity(r)
		if !valid {
			return nil, false, gz.ErrorMessage(gz.ErrorAuthJWTInvalid)
		}

		var em *gz.ErrMsg
		user, em = users.ByIdentity(tx, identity, false)
		if em != nil {
			return nil, false, *em
		}
	}

	errMsg := gz.ErrorMessageOK()
	return user, true, errMsg
}

// getRequestFiles return the multipart form files from the request field "file"
// or "file[]"
func getRequestFiles(r *http.Request) []*multipart.FileHeader {
	// The "file" Form field contains the multiple files.
	var files []*multipart.FileHeader
	files = r.MultipartForm.File["file"]
	fLen := len(files)
	if fLen == 0 {
		files = r.MultipartForm.File["file[]"]
		fLen = len(files)
		if fLen == 0 {
			return nil
		}
	}
	return files
}
