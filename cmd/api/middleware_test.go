package main

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymousRequestToProtectedRoute(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be authenticated")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignTokenRejected(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletedUserStopsAuthenticating(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 7, "ghost")
	mock.ExpectQuery(regexp.QuoteMeta(userColumnsQuery)).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReaderCannotWriteBooks(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 3, "mario")
	expectAuthenticatedUser(mock, 3, "mario", false)

	body := `{"title": "t", "isbn": "1", "authors": [], "genre": [], "id_instance": {"id_security": ""}}`
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	// Only the authentication lookup may have touched the database.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReaderCannotReadGenres(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 3, "mario")
	expectAuthenticatedUser(mock, 3, "mario", false)

	req := httptest.NewRequest(http.MethodGet, "/genre", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffCanCreateGenre(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 1, "admin")
	expectAuthenticatedUser(mock, 1, "admin", true)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO genres (name)")).
		WithArgs("Fantasy").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	req := httptest.NewRequest(http.MethodPost, "/genre", strings.NewReader(`{"name": "Fantasy"}`))
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fantasy")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	app, _ := newTestApplication(t)
	handler := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}
