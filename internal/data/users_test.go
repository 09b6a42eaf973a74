package data

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserModel(t *testing.T) (UserModel, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return UserModel{DB: db}, mock
}

func TestUserInsertCreatesProfile(t *testing.T) {
	m, mock := newUserModel(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("mario", "mario@mail.li", "", "", []byte("hash"), false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles (user_id) VALUES ($1)")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &User{Username: "mario", Email: "mario@mail.li", PasswordHash: []byte("hash")}
	require.NoError(t, m.Insert(user))

	assert.Equal(t, int64(1), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserInsertDuplicateUsername(t *testing.T) {
	m, mock := newUserModel(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})
	mock.ExpectRollback()

	user := &User{Username: "mario", Email: "mario@mail.li", PasswordHash: []byte("hash")}
	err := m.Insert(user)

	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserInsertDuplicateEmail(t *testing.T) {
	m, mock := newUserModel(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	mock.ExpectRollback()

	err := m.Insert(&User{Username: "mario", Email: "mario@mail.li", PasswordHash: []byte("hash")})

	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateTouchesProfile(t *testing.T) {
	m, mock := newUserModel(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("mario", "mario@mail.li", "Mario", "Mario", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET updated_at = now() WHERE user_id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &User{ID: 1, Username: "mario", Email: "mario@mail.li", FirstName: "Mario", LastName: "Mario"}
	require.NoError(t, m.Update(user))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByUsernameNotFound(t *testing.T) {
	m, mock := newUserModel(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := m.GetByUsername("nobody")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUserDeleteNotFound(t *testing.T) {
	m, mock := newUserModel(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, m.Delete(99), ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
