package main

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileViewQuery = `SELECT u.id, u.username, u.first_name, u.last_name, u.email,`

func profileViewRows(userID int64, username string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "first_name", "last_name", "email",
		"location", "phone", "date_joined", "is_reader",
	}).AddRow(userID, username, "Mario", "Mario", username+"@mail.li", "Vilnius", "+37060000", time.Now(), true)
}

func TestShowOwnProfile(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 3, "mario")
	expectAuthenticatedUser(mock, 3, "mario", false)
	mock.ExpectQuery(regexp.QuoteMeta(profileViewQuery)).
		WithArgs(int64(3)).
		WillReturnRows(profileViewRows(3, "mario"))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username": "mario"`)
	assert.Contains(t, rec.Body.String(), `"location": "Vilnius"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShowProfileRequiresAuthentication(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOwnProfilePartial(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 3, "mario")
	expectAuthenticatedUser(mock, 3, "mario", false)

	// Only profile fields in the payload: no users table update expected.
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs(int64(3), "Kaunas", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "location", "phone", "date_joined", "updated_at", "is_reader",
		}).AddRow(int64(3), "Kaunas", "", time.Now(), time.Now(), true))
	mock.ExpectQuery(regexp.QuoteMeta(profileViewQuery)).
		WithArgs(int64(3)).
		WillReturnRows(profileViewRows(3, "mario"))

	req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"location": "Kaunas"}`))
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwnProfile(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 3, "mario")
	expectAuthenticatedUser(mock, 3, "mario", false)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
