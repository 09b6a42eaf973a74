// internal/data/users.go
// Identity rows. Creating a user also creates its profile row in the same
// transaction, so callers get the 1:1 user/profile guarantee at creation time
// rather than through a deferred hook.
package data

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// User represents a single identity stored in the users table.
// The password hash is never serialized into responses.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash []byte    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting identity records.
type UserModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new user record and its profile row in a single transaction.
// The profile is created with all defaults (is_reader true, empty location
// and phone). Duplicate usernames and emails are surfaced as
// ErrDuplicateUsername / ErrDuplicateEmail so handlers can report the
// offending field.
func (m UserModel) Insert(user *User) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err = tx.QueryRow(
		query,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.IsStaff,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return mapUserConstraintError(err)
	}

	// The profile row rides in the same transaction: a user without a
	// profile is never observable.
	_, err = tx.Exec(`INSERT INTO profiles (user_id) VALUES ($1)`, user.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a single user by its primary key.
// Returns ErrRecordNotFound if no user with the given id exists.
func (m UserModel) Get(id int64) (*User, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, username, email, first_name, last_name, password_hash, is_staff, created_at
		FROM users
		WHERE id = $1`

	var user User
	err := m.DB.QueryRow(query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.IsStaff,
		&user.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// GetByUsername retrieves a single user by username, for credential checks.
// Returns ErrRecordNotFound if the username is unknown.
func (m UserModel) GetByUsername(username string) (*User, error) {
	query := `
		SELECT id, username, email, first_name, last_name, password_hash, is_staff, created_at
		FROM users
		WHERE username = $1`

	var user User
	err := m.DB.QueryRow(query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.IsStaff,
		&user.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// Update saves the identity-level fields of user back to the database and
// refreshes the updated_at marker on the user's profile in the same
// transaction, even when no profile field changed.
func (m UserModel) Update(user *User) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE users
		SET username = $1, email = $2, first_name = $3, last_name = $4
		WHERE id = $5`

	result, err := tx.Exec(query, user.Username, user.Email, user.FirstName, user.LastName, user.ID)
	if err != nil {
		return mapUserConstraintError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	// Any save of the identity bumps the profile's updated_at marker.
	_, err = tx.Exec(`UPDATE profiles SET updated_at = now() WHERE user_id = $1`, user.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the user with the given id from the database. The profile
// row goes with it via the ON DELETE CASCADE foreign key, and the credentials
// stop authenticating immediately since login re-reads the users table.
// Returns ErrRecordNotFound if no matching record exists.
func (m UserModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// mapUserConstraintError translates a postgres unique violation on the users
// table into the matching sentinel error, so handlers can attach the failure
// to the right payload field. Anything else passes through unchanged.
func mapUserConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_username_key":
			return ErrDuplicateUsername
		case "users_email_key":
			return ErrDuplicateEmail
		}
	}
	return err
}
