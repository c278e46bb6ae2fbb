package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hoanghai1803/booker/internal/models"
)

const bookColumns = `b.id, b.external_key, b.title, b.author, b.isbn, b.description,
		b.genre, b.pages, b.published_year, b.published_date, b.publisher,
		b.cover_image_url, b.created_at`

// AddBook inserts a new catalog record and returns its ID. A duplicate ISBN
// or external key yields an error wrapping ErrConflict.
func (s *Store) AddBook(ctx context.Context, book *models.Book) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO books (external_key, title, author, title_fold, author_fold, isbn,
			description, genre, pages, published_year, published_date, publisher, cover_image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		nullableString(book.ExternalKey), book.Title, book.Author,
		fold(book.Title), fold(book.Author), nullableString(book.ISBN),
		nullableString(book.Description), nullableString(book.Genre),
		book.Pages, book.PublishedYear, nullableString(book.PublishedDate),
		nullableString(book.Publisher), nullableString(book.CoverURL),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "books.isbn") {
				return 0, fmt.Errorf("book with isbn %q already exists: %w", book.ISBN, ErrConflict)
			}
			return 0, fmt.Errorf("book with external key %q already exists: %w", book.ExternalKey, ErrConflict)
		}
		return 0, fmt.Errorf("adding book: %w", err)
	}
	return id, nil
}

// GetBook returns the book with the given ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	return s.getBookWhere(ctx, "b.id = ?", id)
}

// GetBookByExternalKey returns the book imported under the given provider key.
func (s *Store) GetBookByExternalKey(ctx context.Context, key string) (*models.Book, error) {
	return s.getBookWhere(ctx, "b.external_key = ?", key)
}

// GetBookByISBN returns the book with the given ISBN.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	return s.getBookWhere(ctx, "b.isbn = ?", isbn)
}

func (s *Store) getBookWhere(ctx context.Context, where string, arg any) (*models.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books b WHERE `+where, arg)

	var br bookRow
	if err := row.Scan(br.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting book: %w", err)
	}
	return br.model(), nil
}

// ListBooks returns one page of the catalog ordered by title, with the total
// row count for pagination. Page numbers start at 1.
func (s *Store) ListBooks(ctx context.Context, page, pageSize int) (*models.BookPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting books: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books b
		 ORDER BY b.title, b.id
		 LIMIT ? OFFSET ?`,
		pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, err
	}

	return &models.BookPage{
		Books:      books,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// bookRow holds the nullable columns of a books row during scanning.
type bookRow struct {
	book          models.Book
	externalKey   sql.NullString
	isbn          sql.NullString
	description   sql.NullString
	genre         sql.NullString
	pages         sql.NullInt64
	publishedYear sql.NullInt64
	publishedDate sql.NullString
	publisher     sql.NullString
	coverURL      sql.NullString
	createdAt     string
}

// dest returns scan targets in bookColumns order.
func (r *bookRow) dest() []any {
	return []any{
		&r.book.ID, &r.externalKey, &r.book.Title, &r.book.Author, &r.isbn,
		&r.description, &r.genre, &r.pages, &r.publishedYear, &r.publishedDate,
		&r.publisher, &r.coverURL, &r.createdAt,
	}
}

func (r *bookRow) model() *models.Book {
	b := r.book
	b.ExternalKey = r.externalKey.String
	b.ISBN = r.isbn.String
	b.Description = r.description.String
	b.Genre = r.genre.String
	b.Pages = nullIntToPtr(r.pages)
	b.PublishedYear = nullIntToPtr(r.publishedYear)
	b.PublishedDate = r.publishedDate.String
	b.Publisher = r.publisher.String
	b.CoverURL = r.coverURL.String
	b.CreatedAt = parseTime(r.createdAt)
	return &b
}

func scanBooks(rows *sql.Rows) ([]models.Book, error) {
	books := []models.Book{}
	for rows.Next() {
		var br bookRow
		if err := rows.Scan(br.dest()...); err != nil {
			return nil, fmt.Errorf("scanning book row: %w", err)
		}
		books = append(books, *br.model())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating book rows: %w", err)
	}
	return books, nil
}

// scanner is a minimal interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// fold returns the Unicode case-folded form used by the *_fold search columns.
func fold(s string) string {
	return cases.Fold().String(s)
}

// nullableString converts an empty string to nil for nullable TEXT columns.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullStringToPtr converts a sql.NullString to a *string.
func nullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// nullIntToPtr converts a sql.NullInt64 to an *int.
func nullIntToPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
