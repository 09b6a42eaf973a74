// internal/data/genres.go
package data

import (
	"database/sql"
	"errors"
)

// Genre represents a single genre record stored in the database.
// Books reference genres by name.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting genre records.
type GenreModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new genre record to the database.
// After a successful insert, the database-assigned id is written back into
// the genre struct.
func (m GenreModel) Insert(genre *Genre) error {
	query := `
		INSERT INTO genres (name)
		VALUES ($1)
		RETURNING id`

	return m.DB.QueryRow(query, genre.Name).Scan(&genre.ID)
}

// Get retrieves a single genre by its primary key.
// Returns ErrRecordNotFound if no genre with the given id exists.
func (m GenreModel) Get(id int64) (*Genre, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	var genre Genre
	err := m.DB.QueryRow(`SELECT id, name FROM genres WHERE id = $1`, id).Scan(&genre.ID, &genre.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &genre, nil
}

// GetAll retrieves every genre, ordered by id.
func (m GenreModel) GetAll() ([]*Genre, error) {
	rows, err := m.DB.Query(`SELECT id, name FROM genres ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := []*Genre{}
	for rows.Next() {
		var genre Genre
		err := rows.Scan(&genre.ID, &genre.Name)
		if err != nil {
			return nil, err
		}
		genres = append(genres, &genre)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return genres, nil
}

// Update overwrites the name of the genre with the given id.
// Returns ErrRecordNotFound if no matching record exists.
func (m GenreModel) Update(genre *Genre) error {
	result, err := m.DB.Exec(`UPDATE genres SET name = $1 WHERE id = $2`, genre.Name, genre.ID)
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

// Delete removes the genre with the given id from the database.
// Returns ErrRecordNotFound if no matching record exists.
func (m GenreModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM genres WHERE id = $1`, id)
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
