// internal/data/models.go
package data

import (
	"database/sql"
	"errors"
	"fmt"
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Users         UserModel         // Identity rows and their credential lookups
	Profiles      ProfileModel      // Per-user profile rows, 1:1 with users
	Authors       AuthorModel       // Author reference data
	Genres        GenreModel        // Genre reference data
	BookInstances BookInstanceModel // Book text content, addressed by id_security
	Books         BookModel         // Book aggregates with nested references
}

// NewModels constructs a Models value wired up to the given database connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sql.DB) Models {
	return Models{
		Users:         UserModel{DB: db},
		Profiles:      ProfileModel{DB: db},
		Authors:       AuthorModel{DB: db},
		Genres:        GenreModel{DB: db},
		BookInstances: BookInstanceModel{DB: db},
		Books:         BookModel{DB: db},
	}
}

var (
	// ErrRecordNotFound is returned when a query finds no matching row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateUsername and ErrDuplicateEmail are returned when an insert
	// or update violates one of the unique constraints on the users table.
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")

	// ErrDuplicateIDSecurity is returned when an insert supplies an
	// id_security that another book instance already holds.
	ErrDuplicateIDSecurity = errors.New("duplicate id_security")
)

// UnresolvedReferenceError is returned when a book payload names a nested
// author, genre, or book instance that does not exist. Nested references are
// resolved, never auto-created, so a missing one aborts the whole operation.
type UnresolvedReferenceError struct {
	Kind string // "author", "genre" or "book instance"
	Key  string // the natural key that failed to resolve
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s %q could not be found", e.Kind, e.Key)
}

// queryer is satisfied by both *sql.DB and *sql.Tx, so reference-resolution
// helpers can run inside or outside a transaction.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
