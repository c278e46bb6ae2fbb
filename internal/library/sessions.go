package library

import (
	"context"

	"github.com/hoanghai1803/booker/internal/models"
)

// SessionInput describes pages read in one sitting.
type SessionInput struct {
	StartPage       int    `json:"start_page" validate:"gte=0"`
	EndPage         int    `json:"end_page" validate:"gtfield=StartPage"`
	SessionDate     string `json:"session_date" validate:"omitempty,datetime=2006-01-02"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,gte=0"`
	Notes           string `json:"notes" validate:"max=10000"`
}

// SessionResult is a recorded session together with the entry it advanced.
type SessionResult struct {
	Session *models.ReadingSession `json:"session"`
	Entry   *models.LibraryEntry   `json:"entry"`
}

// RecordSession appends a session to one of the caller's entries and moves
// the entry to the session's end page through the progress rules. The
// session and the entry change are stored atomically.
func (s *Service) RecordSession(ctx context.Context, who Identity, entryID int64, in SessionInput) (*SessionResult, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	today := s.today()
	sess := &models.ReadingSession{
		EntryID:         entryID,
		StartPage:       in.StartPage,
		EndPage:         in.EndPage,
		SessionDate:     today,
		DurationMinutes: in.DurationMinutes,
		Notes:           in.Notes,
	}
	if d := parseDate(in.SessionDate); d != nil {
		sess.SessionDate = *d
	}

	saved, entry, err := s.store.RecordSession(ctx, who.UserID, sess, func(e *models.LibraryEntry) error {
		applyProgress(e, sess.EndPage, today)
		return nil
	})
	if err != nil {
		return nil, translate(err, "record reading session", "library entry not found")
	}
	return &SessionResult{Session: saved, Entry: entry}, nil
}

// ListSessions returns the sessions of one of the caller's entries.
func (s *Service) ListSessions(ctx context.Context, who Identity, entryID int64) ([]models.ReadingSession, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessions(ctx, entryID, who.UserID)
	if err != nil {
		return nil, translate(err, "list reading sessions", "library entry not found")
	}
	return sessions, nil
}

// RepairProgress resets an entry's position to the furthest page reached by
// any of its sessions and re-applies the progress rules. Entries without
// sessions are returned unchanged.
func (s *Service) RepairProgress(ctx context.Context, who Identity, entryID int64) (*models.LibraryEntry, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}

	today := s.today()
	e, err := s.store.RepairEntryProgress(ctx, entryID, who.UserID, func(e *models.LibraryEntry, maxEndPage int) error {
		if maxEndPage > 0 {
			applyProgress(e, maxEndPage, today)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "repair progress", "library entry not found")
	}
	return e, nil
}
