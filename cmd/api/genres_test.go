package main

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteGenreThenShow(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 1, "admin")

	// Delete responds 204 with no body.
	expectAuthenticatedUser(mock, 1, "admin", true)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM genres WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/genre/5", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// A follow-up show of the deleted genre responds 404.
	expectAuthenticatedUser(mock, 1, "admin", true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM genres WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	req = httptest.NewRequest(http.MethodGet, "/genre/5", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteGenreNotFound(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 1, "admin")
	expectAuthenticatedUser(mock, 1, "admin", true)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM genres WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/genre/99", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
