// cmd/api/genres.go
// This file contains the HTTP request handlers for the genres resource.
// The whole resource is staff-only, reads included (gated in routes.go).
package main

import (
	"errors"
	"net/http"

	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/validator"
)

// createGenreHandler handles POST /genre.
func (app *applicationDependencies) createGenreHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Name != "", "name", "must be provided")
	v.Check(validator.MaxChars(input.Name, 256), "name", "must not be more than 256 characters long")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	genre := &data.Genre{Name: input.Name}

	err = app.models.Genres.Insert(genre)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"genre": genre}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showGenreHandler handles GET /genre/:id.
func (app *applicationDependencies) showGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	genre, err := app.models.Genres.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"genre": genre}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listGenresHandler handles GET /genre.
func (app *applicationDependencies) listGenresHandler(w http.ResponseWriter, r *http.Request) {
	genres, err := app.models.Genres.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"genres": genres}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateGenreHandler handles PUT /genre/:id.
func (app *applicationDependencies) updateGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Name != "", "name", "must be provided")
	v.Check(validator.MaxChars(input.Name, 256), "name", "must not be more than 256 characters long")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	genre := &data.Genre{ID: id, Name: input.Name}

	err = app.models.Genres.Update(genre)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"genre": genre}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteGenreHandler handles DELETE /genre/:id.
// Responds 204 with no body on success.
func (app *applicationDependencies) deleteGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Genres.Delete(id)
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
