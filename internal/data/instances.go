// internal/data/instances.go
// Book instances hold the full text content of a book. Externally they are
// addressed by the id_security UUID; the serial id stays internal and only
// appears in the staff listing view.
package data

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BookInstance represents a single book-text record stored in the database.
type BookInstance struct {
	ID         int64     // Internal primary key, not exposed on the detail view
	IDSecurity uuid.UUID // Externally-facing lookup key
	Text       string    // Full text content
}

// BookInstanceAdminView is the projection returned by the staff-only
// list/create endpoint: internal id plus lookup key, no content.
type BookInstanceAdminView struct {
	ID         int64     `json:"id"`
	IDSecurity uuid.UUID `json:"id_security"`
}

// BookInstanceDetailView is the projection returned by the per-instance
// endpoint: lookup key plus content, no internal id.
type BookInstanceDetailView struct {
	IDSecurity uuid.UUID `json:"id_security"`
	Text       string    `json:"text"`
}

// AdminView returns the list/create projection of the instance.
func (i *BookInstance) AdminView() BookInstanceAdminView {
	return BookInstanceAdminView{ID: i.ID, IDSecurity: i.IDSecurity}
}

// DetailView returns the per-instance projection of the instance.
func (i *BookInstance) DetailView() BookInstanceDetailView {
	return BookInstanceDetailView{IDSecurity: i.IDSecurity, Text: i.Text}
}

// BookInstanceModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting book-instance records.
type BookInstanceModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new book-instance record to the database. When the caller
// did not supply an id_security, a fresh UUID is generated here so the key
// can be returned in the same round-trip.
func (m BookInstanceModel) Insert(instance *BookInstance) error {
	if instance.IDSecurity == uuid.Nil {
		instance.IDSecurity = uuid.New()
	}

	query := `
		INSERT INTO book_instances (id_security, text_content)
		VALUES ($1, $2)
		RETURNING id`

	err := m.DB.QueryRow(query, instance.IDSecurity, instance.Text).Scan(&instance.ID)
	if err != nil {
		return mapInstanceConstraintError(err)
	}
	return nil
}

// mapInstanceConstraintError translates a postgres unique violation on the
// id_security column into its sentinel error, so handlers can attach the
// failure to the right payload field. Anything else passes through unchanged.
func mapInstanceConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "book_instances_id_security_key" {
		return ErrDuplicateIDSecurity
	}
	return err
}

// GetBySecurity retrieves a single book instance by its external lookup key.
// Returns ErrRecordNotFound if no instance with the given key exists.
func (m BookInstanceModel) GetBySecurity(key uuid.UUID) (*BookInstance, error) {
	query := `
		SELECT id, id_security, text_content
		FROM book_instances
		WHERE id_security = $1`

	var instance BookInstance
	err := m.DB.QueryRow(query, key).Scan(&instance.ID, &instance.IDSecurity, &instance.Text)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &instance, nil
}

// GetAll retrieves every book instance, ordered by internal id.
func (m BookInstanceModel) GetAll() ([]*BookInstance, error) {
	rows, err := m.DB.Query(`SELECT id, id_security, text_content FROM book_instances ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := []*BookInstance{}
	for rows.Next() {
		var instance BookInstance
		err := rows.Scan(&instance.ID, &instance.IDSecurity, &instance.Text)
		if err != nil {
			return nil, err
		}
		instances = append(instances, &instance)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return instances, nil
}

// UpdateBySecurity overwrites the text content of the instance with the
// given lookup key. The key itself is the instance's address and never
// changes. Returns ErrRecordNotFound if no matching record exists.
func (m BookInstanceModel) UpdateBySecurity(key uuid.UUID, text string) error {
	result, err := m.DB.Exec(`UPDATE book_instances SET text_content = $1 WHERE id_security = $2`, text, key)
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

// DeleteBySecurity removes the instance with the given lookup key. Any book
// bound to it goes too, via the ON DELETE CASCADE foreign key.
// Returns ErrRecordNotFound if no matching record exists.
func (m BookInstanceModel) DeleteBySecurity(key uuid.UUID) error {
	result, err := m.DB.Exec(`DELETE FROM book_instances WHERE id_security = $1`, key)
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
