// cmd/api/bookinstances.go
// This file contains the HTTP request handlers for the book instances
// resource. Instances are addressed externally by their id_security UUID;
// the internal id only appears in the staff listing view. The collection
// endpoints are staff-only, single-instance reads are open to any
// authenticated actor (gated in routes.go).
package main

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/validator"
)

// createBookInstanceHandler handles POST /bookinstances.
// The id_security key may be supplied by the caller; otherwise one is
// generated. The response uses the staff view: id plus id_security.
func (app *applicationDependencies) createBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDSecurity string `json:"id_security"`
		Text       string `json:"text"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Text != "", "text", "must be provided")

	var key uuid.UUID
	if input.IDSecurity != "" {
		key, err = uuid.Parse(input.IDSecurity)
		if err != nil {
			v.AddError("id_security", "must be a valid UUID")
		}
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	instance := &data.BookInstance{IDSecurity: key, Text: input.Text}

	err = app.models.BookInstances.Insert(instance)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateIDSecurity):
			v.AddError("id_security", "a book instance with this id_security already exists")
			app.failedValidationResponse(w, r, v.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"bookinstance": instance.AdminView()}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBookInstancesHandler handles GET /bookinstances.
// Staff-only; returns the id+id_security view without the text content.
func (app *applicationDependencies) listBookInstancesHandler(w http.ResponseWriter, r *http.Request) {
	instances, err := app.models.BookInstances.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	views := []data.BookInstanceAdminView{}
	for _, instance := range instances {
		views = append(views, instance.AdminView())
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"bookinstances": views}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookInstanceHandler handles GET /bookinstances/:id_security.
// Returns the id_security+text view, 404 if the key is unknown.
func (app *applicationDependencies) showBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	key, err := app.readSecurityParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	instance, err := app.models.BookInstances.GetBySecurity(key)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"bookinstance": instance.DetailView()}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookInstanceHandler handles PUT /bookinstances/:id_security.
// Only the text content can change; the key is the instance's address.
func (app *applicationDependencies) updateBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	key, err := app.readSecurityParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Text != "", "text", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.BookInstances.UpdateBySecurity(key, input.Text)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	view := data.BookInstanceDetailView{IDSecurity: key, Text: input.Text}
	err = app.writeJSON(w, http.StatusOK, envelope{"bookinstance": view}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookInstanceHandler handles DELETE /bookinstances/:id_security.
// Responds 204 with no body on success. Any book bound to the instance is
// removed with it.
func (app *applicationDependencies) deleteBookInstanceHandler(w http.ResponseWriter, r *http.Request) {
	key, err := app.readSecurityParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.BookInstances.DeleteBySecurity(key)
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
