package main

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowBookInstanceByKey(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	key := uuid.New()
	access := issueAccessToken(t, app, 3, "mario")
	expectAuthenticatedUser(mock, 3, "mario", false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, id_security, text_content")).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id_security", "text_content"}).
			AddRow(int64(9), key.String(), "full text of the book"))

	req := httptest.NewRequest(http.MethodGet, "/bookinstances/"+key.String(), nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, key.String())
	assert.Contains(t, body, "full text of the book")
	// Readers never see the internal numeric id.
	assert.NotContains(t, body, `"id"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShowBookInstanceBadKey(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 3, "mario")
	expectAuthenticatedUser(mock, 3, "mario", false)

	req := httptest.NewRequest(http.MethodGet, "/bookinstances/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBookInstancesStaffOnly(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 3, "mario")
	expectAuthenticatedUser(mock, 3, "mario", false)

	req := httptest.NewRequest(http.MethodGet, "/bookinstances", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookInstanceDuplicateKey(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	key := uuid.New()
	access := issueAccessToken(t, app, 1, "admin")
	expectAuthenticatedUser(mock, 1, "admin", true)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO book_instances (id_security, text_content)")).
		WithArgs(key, "some text").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "book_instances_id_security_key"})

	body := `{"id_security": "` + key.String() + `", "text": "some text"}`
	req := httptest.NewRequest(http.MethodPost, "/bookinstances", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookInstance(t *testing.T) {
	app, mock := newTestApplication(t)
	handler := app.routes()

	access := issueAccessToken(t, app, 1, "admin")
	expectAuthenticatedUser(mock, 1, "admin", true)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO book_instances (id_security, text_content)")).
		WithArgs(sqlmock.AnyArg(), "some text").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	req := httptest.NewRequest(http.MethodPost, "/bookinstances", strings.NewReader(`{"text": "some text"}`))
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	// The staff view carries the internal id and the generated key, not
	// the text content.
	assert.Contains(t, rec.Body.String(), `"id": 12`)
	assert.Contains(t, rec.Body.String(), "id_security")
	assert.NotContains(t, rec.Body.String(), "some text")
	require.NoError(t, mock.ExpectationsWereMet())
}
