// Package data provides the data models and database interaction logic
// for the library catalog backend.
//
// This file implements the book aggregate. A book is composed from nested
// references: exactly one book instance (by id_security), plus author and
// genre sets resolved by their natural keys. Creating or updating a book
// never creates the referenced entities; an unresolvable reference aborts
// the whole operation inside a single transaction.
package data

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Book statuses. A book with no payload status defaults to not_available.
const (
	StatusAvailable    = "available"
	StatusExpectation  = "expectation"
	StatusNotAvailable = "not_available"
)

// BookStatuses lists every permitted status value, for payload validation.
var BookStatuses = []string{StatusAvailable, StatusExpectation, StatusNotAvailable}

// Book represents a fully composed book aggregate: the row from the books
// table plus its resolved author set, genre set, and instance reference.
type Book struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Authors  []BookAuthor `json:"authors"`
	ISBN     string       `json:"isbn"`
	Genres   []Genre      `json:"genre"`
	Status   string       `json:"status"`
	Instance InstanceRef  `json:"id_instance"`
}

// BookAuthor is the nested author projection inside a composed book.
type BookAuthor struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// InstanceRef is the nested instance projection inside a composed book.
// Only the external lookup key is exposed.
type InstanceRef struct {
	IDSecurity uuid.UUID `json:"id_security"`
}

// AuthorRef names an author by its natural key, as it appears in book payloads.
type AuthorRef struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// GenreRef names a genre by its natural key, as it appears in book payloads.
type GenreRef struct {
	Name string `json:"name"`
}

// BookModel wraps a *sql.DB connection and provides methods for composing,
// reading, updating, and deleting book aggregates.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert creates a new book bound to the instance with the given lookup key
// and associates the referenced authors and genres, all in one transaction.
// Every reference must already exist: a missing instance, author, or genre
// fails the insert with an UnresolvedReferenceError and nothing is persisted.
// On success the book struct carries the fully composed aggregate.
func (m BookModel) Insert(book *Book, instanceKey uuid.UUID, authors []AuthorRef, genres []GenreRef) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var instanceID int64
	err = tx.QueryRow(`SELECT id FROM book_instances WHERE id_security = $1`, instanceKey).Scan(&instanceID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return &UnresolvedReferenceError{Kind: "book instance", Key: instanceKey.String()}
		default:
			return err
		}
	}

	query := `
		INSERT INTO books (title, isbn, status, instance_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err = tx.QueryRow(query, book.Title, book.ISBN, book.Status, instanceID).Scan(&book.ID)
	if err != nil {
		return err
	}

	book.Authors, err = associateAuthors(tx, book.ID, authors)
	if err != nil {
		return err
	}
	book.Genres, err = associateGenres(tx, book.ID, genres)
	if err != nil {
		return err
	}
	book.Instance = InstanceRef{IDSecurity: instanceKey}

	return tx.Commit()
}

// Update overwrites the book's title, isbn, and status unconditionally and
// replaces the entire author and genre sets from the payload references
// (clear then re-add), all in one transaction. Partial payloads are not
// supported for books; that asymmetry with profile updates is intentional.
// The instance binding is never changed by an update.
// Returns ErrRecordNotFound if the book does not exist, or an
// UnresolvedReferenceError if any payload reference is unknown; either way
// the transaction rolls back and the previous state survives.
func (m BookModel) Update(book *Book, authors []AuthorRef, genres []GenreRef) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE books SET title = $1, isbn = $2, status = $3 WHERE id = $4`,
		book.Title, book.ISBN, book.Status, book.ID,
	)
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

	// Clear-then-re-add runs inside the transaction so no reader ever
	// observes the book with empty association sets.
	_, err = tx.Exec(`DELETE FROM books_authors WHERE book_id = $1`, book.ID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`DELETE FROM books_genres WHERE book_id = $1`, book.ID)
	if err != nil {
		return err
	}

	book.Authors, err = associateAuthors(tx, book.ID, authors)
	if err != nil {
		return err
	}
	book.Genres, err = associateGenres(tx, book.ID, genres)
	if err != nil {
		return err
	}

	err = tx.QueryRow(`
		SELECT bi.id_security
		FROM books b
		INNER JOIN book_instances bi ON bi.id = b.instance_id
		WHERE b.id = $1`, book.ID,
	).Scan(&book.Instance.IDSecurity)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a single composed book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT b.id, b.title, b.isbn, b.status, bi.id_security
		FROM books b
		INNER JOIN book_instances bi ON bi.id = b.instance_id
		WHERE b.id = $1`

	var book Book
	err := m.DB.QueryRow(query, id).Scan(
		&book.ID,
		&book.Title,
		&book.ISBN,
		&book.Status,
		&book.Instance.IDSecurity,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	book.Authors, err = fetchBookAuthors(m.DB, book.ID)
	if err != nil {
		return nil, err
	}
	book.Genres, err = fetchBookGenres(m.DB, book.ID)
	if err != nil {
		return nil, err
	}

	return &book, nil
}

// GetAll retrieves every composed book, ordered by id.
func (m BookModel) GetAll() ([]*Book, error) {
	query := `
		SELECT b.id, b.title, b.isbn, b.status, bi.id_security
		FROM books b
		INNER JOIN book_instances bi ON bi.id = b.instance_id
		ORDER BY b.id ASC`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var book Book
		err := rows.Scan(&book.ID, &book.Title, &book.ISBN, &book.Status, &book.Instance.IDSecurity)
		if err != nil {
			return nil, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, book := range books {
		book.Authors, err = fetchBookAuthors(m.DB, book.ID)
		if err != nil {
			return nil, err
		}
		book.Genres, err = fetchBookGenres(m.DB, book.ID)
		if err != nil {
			return nil, err
		}
	}

	return books, nil
}

// Delete removes the book with the given id from the database; its
// association rows go via the ON DELETE CASCADE foreign keys.
// Returns ErrRecordNotFound if no matching record exists.
func (m BookModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM books WHERE id = $1`, id)
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

// associateAuthors resolves each reference by its (first_name, last_name)
// natural key, in payload order, and links it to the book. Adding an
// already-linked author is a no-op thanks to ON CONFLICT DO NOTHING.
func associateAuthors(q queryer, bookID int64, refs []AuthorRef) ([]BookAuthor, error) {
	resolved := []BookAuthor{}
	for _, ref := range refs {
		var author BookAuthor
		err := q.QueryRow(
			`SELECT id, first_name, last_name FROM authors WHERE first_name = $1 AND last_name = $2`,
			ref.FirstName, ref.LastName,
		).Scan(&author.ID, &author.FirstName, &author.LastName)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return nil, &UnresolvedReferenceError{Kind: "author", Key: ref.FirstName + " " + ref.LastName}
			default:
				return nil, err
			}
		}

		_, err = q.Exec(
			`INSERT INTO books_authors (book_id, author_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			bookID, author.ID,
		)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, author)
	}
	return resolved, nil
}

// associateGenres resolves each reference by name, in payload order, and
// links it to the book. Idempotent like associateAuthors.
func associateGenres(q queryer, bookID int64, refs []GenreRef) ([]Genre, error) {
	resolved := []Genre{}
	for _, ref := range refs {
		var genre Genre
		err := q.QueryRow(`SELECT id, name FROM genres WHERE name = $1`, ref.Name).Scan(&genre.ID, &genre.Name)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return nil, &UnresolvedReferenceError{Kind: "genre", Key: ref.Name}
			default:
				return nil, err
			}
		}

		_, err = q.Exec(
			`INSERT INTO books_genres (book_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			bookID, genre.ID,
		)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, genre)
	}
	return resolved, nil
}

// fetchBookAuthors loads the author set associated with a book.
func fetchBookAuthors(q queryer, bookID int64) ([]BookAuthor, error) {
	query := `
		SELECT a.id, a.first_name, a.last_name
		FROM authors a
		INNER JOIN books_authors ba ON ba.author_id = a.id
		WHERE ba.book_id = $1
		ORDER BY a.id ASC`

	rows, err := q.Query(query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := []BookAuthor{}
	for rows.Next() {
		var author BookAuthor
		err := rows.Scan(&author.ID, &author.FirstName, &author.LastName)
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, rows.Err()
}

// fetchBookGenres loads the genre set associated with a book.
func fetchBookGenres(q queryer, bookID int64) ([]Genre, error) {
	query := `
		SELECT g.id, g.name
		FROM genres g
		INNER JOIN books_genres bg ON bg.genre_id = g.id
		WHERE bg.book_id = $1
		ORDER BY g.id ASC`

	rows, err := q.Query(query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := []Genre{}
	for rows.Next() {
		var genre Genre
		err := rows.Scan(&genre.ID, &genre.Name)
		if err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}
