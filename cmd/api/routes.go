// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/yourorg/libraryapp/internal/access"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router
// wrapped in the application middleware.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → authenticate → per-route permission → handler
//
// Permission gates per endpoint:
//
//	register/login/refresh/verify  – anonymous allowed
//	books                          – reads for any authenticated actor, writes staff-only
//	bookinstances (list/create)    – staff-only, reads included
//	bookinstances/:id_security     – reads for any authenticated actor, writes staff-only
//	genre                          – staff-only, reads included
//	authors                        – reads for any authenticated actor, writes staff-only
//	all-profiles                   – any authenticated actor
//	profile                        – caller's own identity+profile ("me" semantics)
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	// Named rule sets, applied per route below.
	readerRead := app.requireRules(access.ActionRead, access.Authenticated, access.ReaderOrAdmin)
	readerWrite := app.requireRules(access.ActionWrite, access.Authenticated, access.ReaderOrAdmin)
	adminRead := app.requireRules(access.ActionRead, access.Authenticated, access.AdminOnly)
	adminWrite := app.requireRules(access.ActionWrite, access.Authenticated, access.AdminOnly)
	authenticatedRead := app.requireRules(access.ActionRead, access.Authenticated)
	authenticatedWrite := app.requireRules(access.ActionWrite, access.Authenticated)

	// Identity lifecycle: the only endpoints open to anonymous callers.
	router.HandlerFunc(http.MethodPost, "/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/refresh", app.refreshTokenHandler)
	router.HandlerFunc(http.MethodPost, "/verify", app.verifyTokenHandler)

	// Book CRUD routes
	router.HandlerFunc(http.MethodGet, "/books", readerRead(app.listBooksHandler))
	router.HandlerFunc(http.MethodPost, "/books", readerWrite(app.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/books/:id", readerRead(app.showBookHandler))
	router.HandlerFunc(http.MethodPut, "/books/:id", readerWrite(app.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/books/:id", readerWrite(app.deleteBookHandler))

	// Book instance routes; the collection is staff-only, single instances
	// are readable by any authenticated actor.
	router.HandlerFunc(http.MethodGet, "/bookinstances", adminRead(app.listBookInstancesHandler))
	router.HandlerFunc(http.MethodPost, "/bookinstances", adminWrite(app.createBookInstanceHandler))
	router.HandlerFunc(http.MethodGet, "/bookinstances/:id_security", readerRead(app.showBookInstanceHandler))
	router.HandlerFunc(http.MethodPut, "/bookinstances/:id_security", readerWrite(app.updateBookInstanceHandler))
	router.HandlerFunc(http.MethodDelete, "/bookinstances/:id_security", readerWrite(app.deleteBookInstanceHandler))

	// Genre routes, staff-only including reads.
	router.HandlerFunc(http.MethodGet, "/genre", adminRead(app.listGenresHandler))
	router.HandlerFunc(http.MethodPost, "/genre", adminWrite(app.createGenreHandler))
	router.HandlerFunc(http.MethodGet, "/genre/:id", adminRead(app.showGenreHandler))
	router.HandlerFunc(http.MethodPut, "/genre/:id", adminWrite(app.updateGenreHandler))
	router.HandlerFunc(http.MethodDelete, "/genre/:id", adminWrite(app.deleteGenreHandler))

	// Author routes
	router.HandlerFunc(http.MethodGet, "/authors", readerRead(app.listAuthorsHandler))
	router.HandlerFunc(http.MethodPost, "/authors", readerWrite(app.createAuthorHandler))
	router.HandlerFunc(http.MethodGet, "/authors/:id", readerRead(app.showAuthorHandler))
	router.HandlerFunc(http.MethodPut, "/authors/:id", readerWrite(app.updateAuthorHandler))
	router.HandlerFunc(http.MethodDelete, "/authors/:id", readerWrite(app.deleteAuthorHandler))

	// Profile routes. /profile operates on the caller's own records.
	router.HandlerFunc(http.MethodGet, "/all-profiles", authenticatedRead(app.listProfilesHandler))
	router.HandlerFunc(http.MethodPost, "/all-profiles", authenticatedWrite(app.createProfileHandler))
	router.HandlerFunc(http.MethodGet, "/profile", app.requireProfileOwner(access.ActionRead, app.showProfileHandler))
	router.HandlerFunc(http.MethodPut, "/profile", app.requireProfileOwner(access.ActionWrite, app.updateProfileHandler))
	router.HandlerFunc(http.MethodDelete, "/profile", app.requireProfileOwner(access.ActionWrite, app.deleteProfileHandler))

	// Wrap with middleware: recoverPanic is outermost so it catches panics
	// from rateLimit, authenticate, and router alike.
	return app.recoverPanic(app.rateLimit(app.authenticate(router)))
}
