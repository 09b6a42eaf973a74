// cmd/api/profiles.go
// This file contains the HTTP request handlers for user profiles.
// /all-profiles serves the whole collection to any authenticated actor;
// /profile always addresses the calling actor's own record, so the owner
// check in routes.go can never fail for a well-formed request.
package main

import (
	"errors"
	"net/http"

	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/validator"
)

// listProfilesHandler handles GET /all-profiles.
func (app *applicationDependencies) listProfilesHandler(w http.ResponseWriter, r *http.Request) {
	profiles, err := app.models.Profiles.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"profiles": profiles}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createProfileHandler handles POST /all-profiles. A profile row already
// exists for every registered user, so this fills in the optional fields
// for the calling actor and returns the combined view.
func (app *applicationDependencies) createProfileHandler(w http.ResponseWriter, r *http.Request) {
	actor := app.contextGetActor(r)

	var input struct {
		Location *string `json:"location"`
		Phone    *string `json:"phone"`
		IsReader *bool   `json:"is_reader"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if input.Phone != nil {
		v.Check(validator.MaxChars(*input.Phone, 12), "phone", "must not be more than 12 characters long")
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	_, err = app.models.Profiles.Upsert(actor.ID, input.Location, input.Phone, input.IsReader)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	view, err := app.models.Profiles.GetForUser(actor.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"profile": view}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showProfileHandler handles GET /profile for the calling actor.
func (app *applicationDependencies) showProfileHandler(w http.ResponseWriter, r *http.Request) {
	actor := app.contextGetActor(r)

	view, err := app.models.Profiles.GetForUser(actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"profile": view}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateProfileHandler handles PUT /profile. All fields are optional;
// absent fields keep their stored values. Identity fields live on the
// users row and the rest on the profile row, and both are updated here.
func (app *applicationDependencies) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	actor := app.contextGetActor(r)

	var input struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Location  *string `json:"location"`
		Phone     *string `json:"phone"`
		IsReader  *bool   `json:"is_reader"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if input.Email != nil {
		v.Check(*input.Email != "", "email", "must be provided")
		v.Check(validator.Matches(*input.Email, validator.EmailRX), "email", "must be a valid email address")
	}
	if input.Phone != nil {
		v.Check(validator.MaxChars(*input.Phone, 12), "phone", "must not be more than 12 characters long")
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	if input.FirstName != nil || input.LastName != nil || input.Email != nil {
		user, err := app.models.Users.Get(actor.ID)
		if err != nil {
			switch {
			case errors.Is(err, data.ErrRecordNotFound):
				app.notFoundResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.Email != nil {
			user.Email = *input.Email
		}

		err = app.models.Users.Update(user)
		if err != nil {
			switch {
			case errors.Is(err, data.ErrDuplicateEmail):
				v.AddError("email", "a user with this email address already exists")
				app.failedValidationResponse(w, r, v.Errors)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}
	}

	if input.Location != nil || input.Phone != nil || input.IsReader != nil {
		_, err = app.models.Profiles.Upsert(actor.ID, input.Location, input.Phone, input.IsReader)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	view, err := app.models.Profiles.GetForUser(actor.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"profile": view}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteProfileHandler handles DELETE /profile. Removing the user row
// cascades to the profile, and any bearer tokens the actor still holds
// stop authenticating on the next request.
func (app *applicationDependencies) deleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	actor := app.contextGetActor(r)

	err := app.models.Users.Delete(actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
