// cmd/api/authors.go
// This file contains the HTTP request handlers for the authors resource.
// Reads are open to any authenticated actor; writes are staff-only (gated
// in routes.go). Authors are referenced from book payloads by the
// first_name+last_name natural key, so names are required.
package main

import (
	"errors"
	"net/http"

	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/validator"
)

// authorPayload is the request body shape shared by create and update.
type authorPayload struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Birthday  *data.Date `json:"birthday"`
}

func validateAuthorPayload(v *validator.Validator, input *authorPayload) {
	v.Check(input.FirstName != "", "first_name", "must be provided")
	v.Check(validator.MaxChars(input.FirstName, 128), "first_name", "must not be more than 128 characters long")
	v.Check(input.LastName != "", "last_name", "must be provided")
	v.Check(validator.MaxChars(input.LastName, 128), "last_name", "must not be more than 128 characters long")
}

// createAuthorHandler handles POST /authors.
func (app *applicationDependencies) createAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var input authorPayload

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	validateAuthorPayload(v, &input)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	author := &data.Author{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Birthday:  input.Birthday,
	}

	err = app.models.Authors.Insert(author)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"author": author}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showAuthorHandler handles GET /authors/:id.
func (app *applicationDependencies) showAuthorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	author, err := app.models.Authors.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"author": author}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listAuthorsHandler handles GET /authors.
func (app *applicationDependencies) listAuthorsHandler(w http.ResponseWriter, r *http.Request) {
	authors, err := app.models.Authors.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"authors": authors}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateAuthorHandler handles PUT /authors/:id. Full update: every field in
// the payload replaces the stored value, an omitted birthday clears it.
func (app *applicationDependencies) updateAuthorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input authorPayload
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	validateAuthorPayload(v, &input)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	author := &data.Author{
		ID:        id,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Birthday:  input.Birthday,
	}

	err = app.models.Authors.Update(author)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"author": author}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteAuthorHandler handles DELETE /authors/:id.
// Responds 204 with no body on success.
func (app *applicationDependencies) deleteAuthorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Authors.Delete(id)
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
