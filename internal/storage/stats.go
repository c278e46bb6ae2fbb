package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hoanghai1803/booker/internal/models"
)

// GetUserStats aggregates a user's library: entries per status, pages of
// completed books, and the mean of all ratings given.
func (s *Store) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	var st models.UserStats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(CASE WHEN ub.status = 'completed' THEN 1 END),
			COUNT(CASE WHEN ub.status = 'currently-reading' THEN 1 END),
			COUNT(CASE WHEN ub.status = 'want-to-read' THEN 1 END),
			COUNT(CASE WHEN ub.status = 'dnf' THEN 1 END),
			COALESCE(SUM(CASE WHEN ub.status = 'completed' THEN b.pages END), 0),
			COALESCE(AVG(ub.rating), 0)
		 FROM user_books ub
		 JOIN books b ON b.id = ub.book_id
		 WHERE ub.user_id = ?`, userID,
	).Scan(&st.BooksCompleted, &st.BooksReading, &st.BooksWantToRead, &st.BooksDNF,
		&st.TotalPagesRead, &st.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("getting user stats: %w", err)
	}
	return &st, nil
}

// GetRecentActivity returns the user's most recently updated entries.
func (s *Store) GetRecentActivity(ctx context.Context, userID int64, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ub.id, b.title, b.author, ub.status, ub.rating,
				ub.date_started, ub.date_finished, ub.updated_at
		 FROM user_books ub
		 JOIN books b ON b.id = ub.book_id
		 WHERE ub.user_id = ?
		 ORDER BY ub.updated_at DESC, ub.id DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent activity: %w", err)
	}
	defer rows.Close()

	activity := []models.Activity{}
	for rows.Next() {
		var (
			a            models.Activity
			status       string
			rating       sql.NullInt64
			dateStarted  sql.NullString
			dateFinished sql.NullString
			updatedAt    string
		)
		if err := rows.Scan(&a.EntryID, &a.Title, &a.Author, &status, &rating,
			&dateStarted, &dateFinished, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		a.Status = models.Status(status)
		a.Rating = nullIntToPtr(rating)
		a.DateStarted = parseTimePtr(nullStringToPtr(dateStarted))
		a.DateFinished = parseTimePtr(nullStringToPtr(dateFinished))
		a.UpdatedAt = parseTime(updatedAt)
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity rows: %w", err)
	}
	return activity, nil
}
