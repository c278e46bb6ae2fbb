package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoanghai1803/booker/internal/models"
)

// GetOrCreateGoal returns the user's goal for year, creating it with
// defaultBooksTarget if none exists. The insert is conditional, so concurrent
// first reads still produce a single row.
func (s *Store) GetOrCreateGoal(ctx context.Context, userID int64, year, defaultBooksTarget int) (*models.ReadingGoal, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_goals (user_id, year, books_target)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id, year) DO NOTHING`,
		userID, year, defaultBooksTarget,
	); err != nil {
		return nil, fmt.Errorf("creating default goal: %w", err)
	}
	return s.GetGoal(ctx, userID, year)
}

// GetGoal returns the user's goal for year.
// Returns nil, ErrNotFound if no goal has been created.
func (s *Store) GetGoal(ctx context.Context, userID int64, year int) (*models.ReadingGoal, error) {
	var (
		g           models.ReadingGoal
		pagesTarget sql.NullInt64
		createdAt   string
		updatedAt   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, year, books_target, pages_target, created_at, updated_at
		 FROM reading_goals
		 WHERE user_id = ? AND year = ?`, userID, year,
	).Scan(&g.ID, &g.UserID, &g.Year, &g.BooksTarget, &pagesTarget, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting goal: %w", err)
	}
	g.PagesTarget = nullIntToPtr(pagesTarget)
	g.CreatedAt = parseTime(createdAt)
	g.UpdatedAt = parseTime(updatedAt)
	return &g, nil
}

// SetGoal inserts or overwrites the target fields of the user's goal for
// year and returns the stored goal.
func (s *Store) SetGoal(ctx context.Context, userID int64, year, booksTarget int, pagesTarget *int) (*models.ReadingGoal, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_goals (user_id, year, books_target, pages_target, updated_at)
		 VALUES (?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(user_id, year) DO UPDATE SET
			books_target = excluded.books_target,
			pages_target = excluded.pages_target,
			updated_at   = excluded.updated_at`,
		userID, year, booksTarget, pagesTarget,
	); err != nil {
		return nil, fmt.Errorf("setting goal: %w", err)
	}
	return s.GetGoal(ctx, userID, year)
}

// CompletedInYear counts the user's completed entries whose finish date falls
// in year, and sums their books' page counts. Books without a page count add
// nothing to the sum.
func (s *Store) CompletedInYear(ctx context.Context, userID int64, year int) (books, pages int, err error) {
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-12-31", year)

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(b.pages), 0)
		 FROM user_books ub
		 JOIN books b ON b.id = ub.book_id
		 WHERE ub.user_id = ?
		   AND ub.status = 'completed'
		   AND ub.date_finished BETWEEN ? AND ?`,
		userID, from, to,
	).Scan(&books, &pages)
	if err != nil {
		return 0, 0, fmt.Errorf("counting completed books for %d: %w", year, err)
	}
	return books, pages, nil
}
