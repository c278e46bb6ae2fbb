package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoanghai1803/booker/internal/models"
)

const entryColumns = `ub.id, ub.user_id, ub.book_id, ub.status, ub.rating, ub.review, ub.notes,
		ub.current_page, ub.date_added, ub.date_started, ub.date_finished, ub.updated_at, ` + bookColumns

const entryFrom = ` FROM user_books ub JOIN books b ON b.id = ub.book_id `

// UpsertEntry creates the (user, book) entry or fully replaces the mutable
// fields of the existing one in a single statement. The entry ID and
// date_added of an existing row are preserved. Returns the entry ID.
func (s *Store) UpsertEntry(ctx context.Context, e *models.LibraryEntry) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO user_books
			(user_id, book_id, status, rating, review, notes, current_page,
			 date_started, date_finished, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(user_id, book_id) DO UPDATE SET
			status        = excluded.status,
			rating        = excluded.rating,
			review        = excluded.review,
			notes         = excluded.notes,
			current_page  = excluded.current_page,
			date_started  = excluded.date_started,
			date_finished = excluded.date_finished,
			updated_at    = excluded.updated_at
		 RETURNING id`,
		e.UserID, e.BookID, string(e.Status), e.Rating,
		nullableString(e.Review), nullableString(e.Notes), e.CurrentPage,
		formatDate(e.DateStarted), formatDate(e.DateFinished),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("book %d does not exist: %w", e.BookID, ErrNotFound)
		}
		return 0, fmt.Errorf("upserting library entry: %w", err)
	}
	return id, nil
}

// GetEntry returns the entry with its book, provided it belongs to userID.
// Returns nil, ErrNotFound otherwise.
func (s *Store) GetEntry(ctx context.Context, id, userID int64) (*models.LibraryEntry, error) {
	return getEntry(ctx, s.db, id, userID)
}

// ListEntries returns a user's entries joined with their books, newest
// update first. An empty status returns every entry.
func (s *Store) ListEntries(ctx context.Context, userID int64, status models.Status) ([]models.LibraryEntry, error) {
	query := `SELECT ` + entryColumns + entryFrom + `WHERE ub.user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND ub.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY ub.updated_at DESC, ub.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying library entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LibraryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning library entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating library entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry loads the entry owned by userID, lets mutate change it, and
// writes the result back, all inside one transaction. The returned entry is
// the stored state after the write.
func (s *Store) UpdateEntry(ctx context.Context, id, userID int64, mutate func(e *models.LibraryEntry) error) (*models.LibraryEntry, error) {
	var updated *models.LibraryEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntry(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if err := mutate(e); err != nil {
			return err
		}
		if err := writeEntry(ctx, tx, e); err != nil {
			return err
		}
		updated, err = getEntry(ctx, tx, id, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEntry removes an entry owned by userID. Its reading sessions cascade.
func (s *Store) DeleteEntry(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_books WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting library entry: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func getEntry(ctx context.Context, q querier, id, userID int64) (*models.LibraryEntry, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+entryColumns+entryFrom+`WHERE ub.id = ? AND ub.user_id = ?`, id, userID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting library entry: %w", err)
	}
	return e, nil
}

// writeEntry persists the mutable fields of e.
func writeEntry(ctx context.Context, q querier, e *models.LibraryEntry) error {
	_, err := q.ExecContext(ctx,
		`UPDATE user_books SET
			status        = ?,
			rating        = ?,
			review        = ?,
			notes         = ?,
			current_page  = ?,
			date_started  = ?,
			date_finished = ?,
			updated_at    = datetime('now')
		 WHERE id = ?`,
		string(e.Status), e.Rating, nullableString(e.Review), nullableString(e.Notes),
		e.CurrentPage, formatDate(e.DateStarted), formatDate(e.DateFinished), e.ID,
	)
	if err != nil {
		return fmt.Errorf("writing library entry %d: %w", e.ID, err)
	}
	return nil
}

// scanEntry scans an entryColumns row into a LibraryEntry with its Book.
func scanEntry(row scanner) (*models.LibraryEntry, error) {
	var (
		e            models.LibraryEntry
		status       string
		rating       sql.NullInt64
		review       sql.NullString
		notes        sql.NullString
		dateAdded    string
		dateStarted  sql.NullString
		dateFinished sql.NullString
		updatedAt    string
		br           bookRow
	)

	dest := []any{
		&e.ID, &e.UserID, &e.BookID, &status, &rating, &review, &notes,
		&e.CurrentPage, &dateAdded, &dateStarted, &dateFinished, &updatedAt,
	}
	if err := row.Scan(append(dest, br.dest()...)...); err != nil {
		return nil, err
	}

	e.Status = models.Status(status)
	e.Rating = nullIntToPtr(rating)
	e.Review = review.String
	e.Notes = notes.String
	e.DateAdded = parseTime(dateAdded)
	e.DateStarted = parseTimePtr(nullStringToPtr(dateStarted))
	e.DateFinished = parseTimePtr(nullStringToPtr(dateFinished))
	e.UpdatedAt = parseTime(updatedAt)
	e.Book = br.model()
	e.TotalPages = e.Book.Pages

	return &e, nil
}
