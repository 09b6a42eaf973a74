// internal/data/authors.go
package data

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// Date is a calendar date without a time component, encoded in JSON as
// "YYYY-MM-DD". It scans from and stores to a postgres date column.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// MarshalJSON encodes the date as a quoted "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON parses a quoted "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s, expected \"YYYY-MM-DD\"", s)
	}
	t, err := time.Parse(dateLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Scan implements sql.Scanner so a date column reads into a Date.
func (d *Date) Scan(value any) error {
	t, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	d.Time = t
	return nil
}

// Value implements driver.Valuer so a Date writes to a date column.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Author represents a single author record stored in the database.
// Books reference authors by the (first_name, last_name) natural key.
type Author struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthday  *Date  `json:"birthday,omitempty"` // Optional; omitted from JSON when unknown
}

// AuthorModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting author records.
type AuthorModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new author record to the database.
// After a successful insert, the database-assigned id is written back into
// the author struct.
func (m AuthorModel) Insert(author *Author) error {
	query := `
		INSERT INTO authors (first_name, last_name, birthday)
		VALUES ($1, $2, $3)
		RETURNING id`

	return m.DB.QueryRow(query, author.FirstName, author.LastName, author.Birthday).Scan(&author.ID)
}

// Get retrieves a single author by its primary key.
// Returns ErrRecordNotFound if no author with the given id exists.
func (m AuthorModel) Get(id int64) (*Author, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, first_name, last_name, birthday
		FROM authors
		WHERE id = $1`

	var author Author
	err := m.DB.QueryRow(query, id).Scan(
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.Birthday,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &author, nil
}

// GetAll retrieves every author, ordered by id.
func (m AuthorModel) GetAll() ([]*Author, error) {
	query := `
		SELECT id, first_name, last_name, birthday
		FROM authors
		ORDER BY id ASC`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := []*Author{}
	for rows.Next() {
		var author Author
		err := rows.Scan(&author.ID, &author.FirstName, &author.LastName, &author.Birthday)
		if err != nil {
			return nil, err
		}
		authors = append(authors, &author)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return authors, nil
}

// Update overwrites all fields of the author with the given id.
// Returns ErrRecordNotFound if no matching record exists.
func (m AuthorModel) Update(author *Author) error {
	query := `
		UPDATE authors
		SET first_name = $1, last_name = $2, birthday = $3
		WHERE id = $4`

	result, err := m.DB.Exec(query, author.FirstName, author.LastName, author.Birthday, author.ID)
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

// Delete removes the author with the given id from the database.
// Returns ErrRecordNotFound if no matching record exists.
func (m AuthorModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM authors WHERE id = $1`, id)
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
