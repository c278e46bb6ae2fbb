package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hoanghai1803/booker/internal/models"
)

// RecordSession appends a reading session to an entry owned by userID and
// applies advance to the entry, in one transaction. Either both the session
// row and the entry update land, or neither does.
func (s *Store) RecordSession(
	ctx context.Context,
	userID int64,
	sess *models.ReadingSession,
	advance func(e *models.LibraryEntry) error,
) (*models.ReadingSession, *models.LibraryEntry, error) {
	var (
		saved   *models.ReadingSession
		updated *models.LibraryEntry
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntry(ctx, tx, sess.EntryID, userID)
		if err != nil {
			return err
		}

		var (
			id        int64
			createdAt string
		)
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO reading_sessions
				(user_book_id, start_page, end_page, session_date, duration_minutes, notes)
			 VALUES (?, ?, ?, ?, ?, ?)
			 RETURNING id, created_at`,
			sess.EntryID, sess.StartPage, sess.EndPage, formatDate(&sess.SessionDate),
			sess.DurationMinutes, nullableString(sess.Notes),
		).Scan(&id, &createdAt); err != nil {
			return fmt.Errorf("inserting reading session: %w", err)
		}

		if err := advance(e); err != nil {
			return err
		}
		if err := writeEntry(ctx, tx, e); err != nil {
			return err
		}

		updated, err = getEntry(ctx, tx, sess.EntryID, userID)
		if err != nil {
			return err
		}

		cp := *sess
		cp.ID = id
		cp.CreatedAt = parseTime(createdAt)
		saved = &cp
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return saved, updated, nil
}

// ListSessions returns the reading sessions of an entry owned by userID,
// oldest first. Returns ErrNotFound if the entry is not the user's.
func (s *Store) ListSessions(ctx context.Context, entryID, userID int64) ([]models.ReadingSession, error) {
	if _, err := getEntry(ctx, s.db, entryID, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_book_id, start_page, end_page, session_date,
				duration_minutes, notes, created_at
		 FROM reading_sessions
		 WHERE user_book_id = ?
		 ORDER BY session_date, id`, entryID)
	if err != nil {
		return nil, fmt.Errorf("querying reading sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.ReadingSession{}
	for rows.Next() {
		var (
			sess        models.ReadingSession
			sessionDate string
			duration    sql.NullInt64
			notes       sql.NullString
			createdAt   string
		)
		if err := rows.Scan(
			&sess.ID, &sess.EntryID, &sess.StartPage, &sess.EndPage, &sessionDate,
			&duration, &notes, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reading session row: %w", err)
		}
		sess.SessionDate = parseTime(sessionDate)
		sess.DurationMinutes = nullIntToPtr(duration)
		sess.Notes = notes.String
		sess.CreatedAt = parseTime(createdAt)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reading sessions: %w", err)
	}
	return sessions, nil
}

// RepairEntryProgress recomputes an entry's position from its sessions. The
// highest recorded end page is passed to repair together with the entry, and
// the result is written back in the same transaction. maxEndPage is zero when
// the entry has no sessions.
func (s *Store) RepairEntryProgress(
	ctx context.Context,
	entryID, userID int64,
	repair func(e *models.LibraryEntry, maxEndPage int) error,
) (*models.LibraryEntry, error) {
	var updated *models.LibraryEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntry(ctx, tx, entryID, userID)
		if err != nil {
			return err
		}

		var maxEnd int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(end_page), 0) FROM reading_sessions WHERE user_book_id = ?`,
			entryID,
		).Scan(&maxEnd); err != nil {
			return fmt.Errorf("reading max session end page: %w", err)
		}

		if err := repair(e, maxEnd); err != nil {
			return err
		}
		if err := writeEntry(ctx, tx, e); err != nil {
			return err
		}
		updated, err = getEntry(ctx, tx, entryID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
