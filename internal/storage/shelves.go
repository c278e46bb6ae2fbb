package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hoanghai1803/booker/internal/models"
)

// CreateShelf inserts a bookshelf for the user and returns its ID. A second
// shelf with the same name for the same user wraps ErrConflict.
func (s *Store) CreateShelf(ctx context.Context, shelf *models.Bookshelf) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO bookshelves (user_id, name, description, is_public)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		shelf.UserID, shelf.Name, shelf.Description, shelf.IsPublic,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("bookshelf %q already exists: %w", shelf.Name, ErrConflict)
		}
		return 0, fmt.Errorf("creating bookshelf: %w", err)
	}
	return id, nil
}

// ListShelves returns the user's bookshelves with their book counts, newest
// first.
func (s *Store) ListShelves(ctx context.Context, userID int64) ([]models.Bookshelf, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bs.id, bs.user_id, bs.name, bs.description, bs.is_public, bs.created_at,
				COUNT(bb.id) AS book_count
		 FROM bookshelves bs
		 LEFT JOIN bookshelf_books bb ON bb.bookshelf_id = bs.id
		 WHERE bs.user_id = ?
		 GROUP BY bs.id
		 ORDER BY bs.created_at DESC, bs.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying bookshelves: %w", err)
	}
	defer rows.Close()

	shelves := []models.Bookshelf{}
	for rows.Next() {
		var (
			shelf     models.Bookshelf
			createdAt string
		)
		if err := rows.Scan(
			&shelf.ID, &shelf.UserID, &shelf.Name, &shelf.Description,
			&shelf.IsPublic, &createdAt, &shelf.BookCount,
		); err != nil {
			return nil, fmt.Errorf("scanning bookshelf row: %w", err)
		}
		shelf.CreatedAt = parseTime(createdAt)
		shelves = append(shelves, shelf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookshelves: %w", err)
	}
	return shelves, nil
}

// DeleteShelf removes a bookshelf owned by userID along with its placements.
func (s *Store) DeleteShelf(ctx context.Context, shelfID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bookshelves WHERE id = ? AND user_id = ?`, shelfID, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting bookshelf: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddBookToShelf places a book on a shelf owned by userID. Adding a book that
// is already on the shelf is a no-op.
func (s *Store) AddBookToShelf(ctx context.Context, shelfID, userID, bookID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkShelfOwner(ctx, tx, shelfID, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO bookshelf_books (bookshelf_id, book_id) VALUES (?, ?)`,
			shelfID, bookID,
		); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("book %d does not exist: %w", bookID, ErrNotFound)
			}
			return fmt.Errorf("adding book to shelf: %w", err)
		}
		return nil
	})
}

// RemoveBookFromShelf takes a book off a shelf owned by userID.
func (s *Store) RemoveBookFromShelf(ctx context.Context, shelfID, userID, bookID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkShelfOwner(ctx, tx, shelfID, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM bookshelf_books WHERE bookshelf_id = ? AND book_id = ?`,
			shelfID, bookID,
		)
		if err != nil {
			return fmt.Errorf("removing book from shelf: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ShelfBooks returns the books on a shelf owned by userID, ordered by title.
func (s *Store) ShelfBooks(ctx context.Context, shelfID, userID int64) ([]models.Book, error) {
	if err := checkShelfOwner(ctx, s.db, shelfID, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+`
		 FROM bookshelf_books bb
		 JOIN books b ON b.id = bb.book_id
		 WHERE bb.bookshelf_id = ?
		 ORDER BY b.title, b.id`, shelfID)
	if err != nil {
		return nil, fmt.Errorf("querying shelf books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func checkShelfOwner(ctx context.Context, q querier, shelfID, userID int64) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookshelves WHERE id = ? AND user_id = ?)`, shelfID, userID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking bookshelf: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
