package main

import (
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/libraryapp/internal/data"
	"github.com/yourorg/libraryapp/internal/token"
)

const userColumnsQuery = `SELECT id, username, email, first_name, last_name, password_hash, is_staff, created_at`

// newTestApplication builds an application wired to a mocked database,
// with the rate limiter disabled and logs discarded.
func newTestApplication(t *testing.T) (*applicationDependencies, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var settings serverConfig
	settings.environment = "test"
	settings.jwt.secret = "test-signing-secret"
	settings.jwt.accessTTL = 15 * time.Minute
	settings.jwt.refreshTTL = time.Hour
	settings.limiter.enabled = false

	app := &applicationDependencies{
		config: settings,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.NewModels(db),
		tokens: token.NewManager(settings.jwt.secret, settings.jwt.accessTTL, settings.jwt.refreshTTL),
	}
	return app, mock
}

// issueAccessToken mints a bearer token for the given identity using the
// test application's own manager.
func issueAccessToken(t *testing.T, app *applicationDependencies, userID int64, username string) string {
	t.Helper()

	pair, err := app.tokens.IssuePair(userID, username)
	require.NoError(t, err)
	return pair.Access
}

// expectAuthenticatedUser queues the user lookup that the authenticate
// middleware performs for every request carrying a bearer token.
func expectAuthenticatedUser(mock sqlmock.Sqlmock, userID int64, username string, isStaff bool) {
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "first_name", "last_name", "password_hash", "is_staff", "created_at",
	}).AddRow(userID, username, username+"@example.com", "", "", []byte("irrelevant"), isStaff, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(userColumnsQuery)).WithArgs(userID).WillReturnRows(rows)
}
