// cmd/api/books.go
// This file contains the HTTP request handlers for the books resource.
// Book payloads carry nested references (authors by name, genres by name,
// the instance by id_security); the model layer resolves them against
// existing rows inside one transaction and never creates them implicitly.
package main

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/validator"
)

// bookPayload is the request body shape shared by create and update.
// The author and genre sets are pointers so an omitted key can be told
// apart from an explicitly empty list: book writes replace both sets
// wholesale, so an absent key is rejected rather than treated as a
// clear-all. Updates carry the same shape but their id_instance is
// ignored: the instance binding is fixed at creation.
type bookPayload struct {
	Title      string            `json:"title"`
	ISBN       string            `json:"isbn"`
	Status     string            `json:"status"`
	Authors    *[]data.AuthorRef `json:"authors"`
	Genre      *[]data.GenreRef  `json:"genre"`
	IDInstance struct {
		IDSecurity string `json:"id_security"`
	} `json:"id_instance"`
}

// validateBookPayload collects field-level errors for a book payload.
// The instance reference is only required on create.
func validateBookPayload(v *validator.Validator, input *bookPayload, requireInstance bool) {
	v.Check(input.Title != "", "title", "must be provided")
	v.Check(validator.MaxChars(input.Title, 256), "title", "must not be more than 256 characters long")
	v.Check(input.ISBN != "", "isbn", "must be provided")
	v.Check(validator.MaxChars(input.ISBN, 17), "isbn", "must not be more than 17 characters long")
	v.Check(validator.In(input.Status, data.BookStatuses...), "status", "must be one of available, expectation, not_available")
	if requireInstance {
		v.Check(input.IDInstance.IDSecurity != "", "id_instance.id_security", "must be provided")
	}
	v.Check(input.Authors != nil, "authors", "must be provided")
	v.Check(input.Genre != nil, "genre", "must be provided")
	if input.Authors != nil {
		for _, ref := range *input.Authors {
			v.Check(ref.FirstName != "" && ref.LastName != "", "authors", "each reference needs first_name and last_name")
		}
	}
	if input.Genre != nil {
		for _, ref := range *input.Genre {
			v.Check(ref.Name != "", "genre", "each reference needs a name")
		}
	}
}

// createBookHandler handles POST /books.
// It resolves the nested instance/author/genre references and persists the
// composed book in one transaction, responding with the full aggregate and
// a 201 Created status. An unresolvable reference yields a 404 naming it.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input bookPayload

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// An omitted status falls back to the catalog default.
	if input.Status == "" {
		input.Status = data.StatusNotAvailable
	}

	v := validator.New()
	validateBookPayload(v, &input, true)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	instanceKey, err := uuid.Parse(input.IDInstance.IDSecurity)
	if err != nil {
		v.AddError("id_instance.id_security", "must be a valid UUID")
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	book := &data.Book{
		Title:  input.Title,
		ISBN:   input.ISBN,
		Status: input.Status,
	}

	err = app.models.Books.Insert(book, instanceKey, *input.Authors, *input.Genre)
	if err != nil {
		var unresolved *data.UnresolvedReferenceError
		switch {
		case errors.As(err, &unresolved):
			app.unresolvedReferenceResponse(w, r, unresolved)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /books/:id.
// It responds with the composed book aggregate, 404 if it does not exist.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /books.
// It fetches every composed book and returns them as a JSON array.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PUT /books/:id.
// Every scalar field must be present; title/isbn/status are overwritten
// unconditionally and the author/genre sets are replaced wholesale from the
// payload. Partial book updates are not supported, unlike profile updates.
// The instance binding is left as it was at creation.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input bookPayload
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	validateBookPayload(v, &input, false)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	book := &data.Book{
		ID:     id,
		Title:  input.Title,
		ISBN:   input.ISBN,
		Status: input.Status,
	}

	err = app.models.Books.Update(book, *input.Authors, *input.Genre)
	if err != nil {
		var unresolved *data.UnresolvedReferenceError
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.As(err, &unresolved):
			app.unresolvedReferenceResponse(w, r, unresolved)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /books/:id.
// Responds 204 with no body on success, 404 if the book does not exist.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Books.Delete(id)
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
