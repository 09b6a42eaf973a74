// internal/data/profiles.go
// Profile rows and the denormalized user+profile projection served by the
// /profile endpoint. Profile updates are partial: only the supplied fields
// overwrite, which is deliberately different from book updates.
package data

import (
	"database/sql"
	"errors"
	"time"
)

// Profile represents the optional, per-user profile data.
// date_joined is set once at creation; updated_at is refreshed on every
// mutation of the profile or of its owning user.
type Profile struct {
	UserID     int64     `json:"user_id"`
	Location   string    `json:"location"`
	Phone      string    `json:"phone"`
	DateJoined time.Time `json:"date_joined"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsReader   bool      `json:"is_reader"`
}

// UserProfileView is the combined identity+profile projection returned by
// GET /profile: identity fields from users joined with profile fields.
type UserProfileView struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Location   string    `json:"location"`
	Phone      string    `json:"phone"`
	DateJoined time.Time `json:"date_joined"`
	IsReader   bool      `json:"is_reader"`
}

// ProfileModel wraps a *sql.DB connection and provides methods for reading
// and mutating profile records.
type ProfileModel struct {
	DB *sql.DB // Shared database connection pool
}

// GetForUser returns the combined user+profile projection for the given user.
// Returns ErrRecordNotFound if the user (or its profile) does not exist.
func (m ProfileModel) GetForUser(userID int64) (*UserProfileView, error) {
	if userID < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT u.id, u.username, u.first_name, u.last_name, u.email,
		       p.location, p.phone, p.date_joined, p.is_reader
		FROM users u
		INNER JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1`

	var view UserProfileView
	err := m.DB.QueryRow(query, userID).Scan(
		&view.ID,
		&view.Username,
		&view.FirstName,
		&view.LastName,
		&view.Email,
		&view.Location,
		&view.Phone,
		&view.DateJoined,
		&view.IsReader,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &view, nil
}

// GetAll retrieves every profile row, ordered by owner id.
func (m ProfileModel) GetAll() ([]*Profile, error) {
	query := `
		SELECT user_id, location, phone, date_joined, updated_at, is_reader
		FROM profiles
		ORDER BY user_id ASC`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []*Profile{}
	for rows.Next() {
		var profile Profile
		err := rows.Scan(
			&profile.UserID,
			&profile.Location,
			&profile.Phone,
			&profile.DateJoined,
			&profile.UpdatedAt,
			&profile.IsReader,
		)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, &profile)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Upsert applies a partial profile update for the given user with
// update-or-create semantics: if no profile row exists yet one is created
// from the supplied fields, otherwise only the non-nil fields overwrite.
// updated_at is refreshed either way. Returns the resulting profile row.
func (m ProfileModel) Upsert(userID int64, location, phone *string, isReader *bool) (*Profile, error) {
	if userID < 1 {
		return nil, ErrRecordNotFound
	}

	// COALESCE against the nullable parameters keeps unsupplied fields at
	// their current (or default) values.
	query := `
		INSERT INTO profiles (user_id, location, phone, is_reader)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, true))
		ON CONFLICT (user_id) DO UPDATE SET
			location = COALESCE($2, profiles.location),
			phone = COALESCE($3, profiles.phone),
			is_reader = COALESCE($4, profiles.is_reader),
			updated_at = now()
		RETURNING user_id, location, phone, date_joined, updated_at, is_reader`

	var profile Profile
	err := m.DB.QueryRow(query, userID, location, phone, isReader).Scan(
		&profile.UserID,
		&profile.Location,
		&profile.Phone,
		&profile.DateJoined,
		&profile.UpdatedAt,
		&profile.IsReader,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
