package main

import (
	"net/http"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"

	"github.com/mlx-launcher/mlx/bundles/users"
)

// UserRegister creates a new user account.
// You can request this method with the following cURL request:
//
//	curl -k -X POST --url https://localhost:4430/1.0/auth/register
//	  -H "Content-Type: application/json"
//	  -d '{"username":"alice", "email":"alice@example.org", "password":"secret"}'
func UserRegister(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	var ri users.RegistrationInput
	if em := ParseStruct(&ri, r, false); em != nil {
		return nil, em
	}

	response, em := users.CreateUser(r.Context(), tx, &ri)
	if em != nil {
		return nil, em
	}
	return response, nil
}

// UserLogin authenticates a user and returns a signed access token.
// The username field also accepts the user's email address.
// You can request this method with the following cURL request:
//
//	curl -k -X POST --url https://localhost:4430/1.0/auth/login
//	  -H "Content-Type: application/json"
//	  -d '{"username":"alice", "password":"secret"}'
func UserLogin(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	var li users.LoginInput
	if em := ParseStruct(&li, r, false); em != nil {
		return nil, em
	}

	response, em := users.Login(r.Context(), tx, &li)
	if em != nil {
		return nil, em
	}
	return response, nil
}
