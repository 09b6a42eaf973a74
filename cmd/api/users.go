// cmd/api/users.go
// This file contains the identity-lifecycle handlers: registration and the
// JWT token endpoints. These are the only endpoints open to anonymous
// callers; everything else requires a bearer token.
package main

import (
	"errors"
	"net/http"

	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/token"
	"github.com/yourorg/libraryapp/internal/validator"

	"golang.org/x/crypto/bcrypt"
)

// registerUserHandler handles POST /register.
// It validates the registration payload, hashes the password, and creates
// the identity together with its profile row in one transaction. Duplicate
// usernames and emails come back as field-level validation errors.
func (app *applicationDependencies) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Username != "", "username", "must be provided")
	v.Check(input.Email != "", "email", "must be provided")
	v.Check(input.Email == "" || validator.Matches(input.Email, validator.EmailRX), "email", "must be a valid email address")
	v.Check(validator.MinChars(input.Password, 8), "password", "must be at least 8 characters long")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	user := &data.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	// Insert also creates the user's profile row; the caller gets the 1:1
	// guarantee without a separate call.
	err = app.models.Users.Insert(user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			v.AddError("username", "a user with this username already exists")
			app.failedValidationResponse(w, r, v.Errors)
		case errors.Is(err, data.ErrDuplicateEmail):
			v.AddError("email", "a user with this email address already exists")
			app.failedValidationResponse(w, r, v.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// loginUserHandler handles POST /login.
// On valid credentials it responds with an access+refresh token pair.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (app *applicationDependencies) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Username != "", "username", "must be provided")
	v.Check(input.Password != "", "password", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	user, err := app.models.Users.GetByUsername(input.Username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.invalidCredentialsResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(input.Password))
	if err != nil {
		app.invalidCredentialsResponse(w, r)
		return
	}

	pair, err := app.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Token responses must never land in shared caches.
	w.Header().Set("Cache-Control", "no-store")
	err = app.writeJSON(w, http.StatusOK, envelope{"access": pair.Access, "refresh": pair.Refresh}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// refreshTokenHandler handles POST /refresh.
// It exchanges a valid refresh token for a fresh access token.
func (app *applicationDependencies) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Refresh string `json:"refresh"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	accessToken, err := app.tokens.Refresh(input.Refresh)
	if err != nil {
		app.invalidAuthenticationTokenResponse(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	err = app.writeJSON(w, http.StatusOK, envelope{"access": accessToken}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// verifyTokenHandler handles POST /verify.
// It reports whether the supplied token (access or refresh) is currently
// valid: 200 with an empty object when it is, 401 otherwise.
func (app *applicationDependencies) verifyTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.tokens.Verify(input.Token, token.ScopeAccess); err != nil {
		if _, err := app.tokens.Verify(input.Token, token.ScopeRefresh); err != nil {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}
	}

	err = app.writeJSON(w, http.StatusOK, envelope{}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
