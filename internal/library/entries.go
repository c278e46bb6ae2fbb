package library

import (
	"context"
	"time"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/models"
)

const dateLayout = "2006-01-02"

// EntryInput is the full state of a library entry as written by upsert.
// Fields left empty are stored empty; nothing is merged from a previous
// entry for the same book.
type EntryInput struct {
	BookID       int64         `json:"book_id" validate:"required,gt=0"`
	Status       models.Status `json:"status" validate:"omitempty,oneof=want-to-read currently-reading completed dnf"`
	Rating       *int          `json:"rating" validate:"omitempty,min=1,max=5"`
	Review       string        `json:"review" validate:"max=10000"`
	Notes        string        `json:"notes" validate:"max=10000"`
	CurrentPage  *int          `json:"current_page"`
	DateStarted  string        `json:"date_started" validate:"omitempty,datetime=2006-01-02"`
	DateFinished string        `json:"date_finished" validate:"omitempty,datetime=2006-01-02"`
}

// EntryPatch changes only the fields that are present.
type EntryPatch struct {
	Status       *models.Status `json:"status" validate:"omitempty,oneof=want-to-read currently-reading completed dnf"`
	Rating       *int           `json:"rating" validate:"omitempty,min=1,max=5"`
	Review       *string        `json:"review" validate:"omitempty,max=10000"`
	Notes        *string        `json:"notes" validate:"omitempty,max=10000"`
	CurrentPage  *int           `json:"current_page"`
	DateStarted  *string        `json:"date_started" validate:"omitempty,datetime=2006-01-02"`
	DateFinished *string        `json:"date_finished" validate:"omitempty,datetime=2006-01-02"`
}

// UpsertEntry creates the caller's entry for a book or replaces it. The
// status defaults to want-to-read and is then reconciled with the position
// and dates supplied.
func (s *Service) UpsertEntry(ctx context.Context, who Identity, in EntryInput) (*models.LibraryEntry, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, in.BookID)
	if err != nil {
		return nil, translate(err, "load book", "book not found")
	}

	e := &models.LibraryEntry{
		UserID:       who.UserID,
		BookID:       book.ID,
		Status:       in.Status,
		Rating:       in.Rating,
		Review:       in.Review,
		Notes:        in.Notes,
		TotalPages:   book.Pages,
		DateStarted:  parseDate(in.DateStarted),
		DateFinished: parseDate(in.DateFinished),
	}
	if e.Status == "" {
		e.Status = models.StatusWantToRead
	}
	if in.CurrentPage != nil {
		e.CurrentPage = *in.CurrentPage
	}
	normalizeExplicit(e, s.today())

	id, err := s.store.UpsertEntry(ctx, e)
	if err != nil {
		return nil, translate(err, "save library entry", "book not found")
	}
	return s.GetEntry(ctx, who, id)
}

// GetEntry returns one of the caller's entries.
func (s *Service) GetEntry(ctx context.Context, who Identity, entryID int64) (*models.LibraryEntry, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	e, err := s.store.GetEntry(ctx, entryID, who.UserID)
	if err != nil {
		return nil, translate(err, "load library entry", "library entry not found")
	}
	return e, nil
}

// ListEntries returns the caller's entries, optionally filtered by status.
func (s *Service) ListEntries(ctx context.Context, who Identity, status string) ([]models.LibraryEntry, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	st := models.Status(status)
	if st != "" && !st.Valid() {
		return nil, apperr.Validation("unknown status %q", status)
	}
	entries, err := s.store.ListEntries(ctx, who.UserID, st)
	if err != nil {
		return nil, translate(err, "list library entries", "")
	}
	return entries, nil
}

// UpdateEntry applies a partial update. A patch that sets the status or a
// date is treated as an explicit change and reconciled the same way as an
// upsert; a patch that only moves the position follows the progress rules.
func (s *Service) UpdateEntry(ctx context.Context, who Identity, entryID int64, patch EntryPatch) (*models.LibraryEntry, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	if err := s.validate.check(patch); err != nil {
		return nil, err
	}

	today := s.today()
	e, err := s.store.UpdateEntry(ctx, entryID, who.UserID, func(e *models.LibraryEntry) error {
		if patch.Rating != nil {
			e.Rating = patch.Rating
		}
		if patch.Review != nil {
			e.Review = *patch.Review
		}
		if patch.Notes != nil {
			e.Notes = *patch.Notes
		}
		if patch.DateStarted != nil {
			e.DateStarted = parseDate(*patch.DateStarted)
		}
		if patch.DateFinished != nil {
			e.DateFinished = parseDate(*patch.DateFinished)
		}

		explicit := patch.Status != nil || patch.DateStarted != nil || patch.DateFinished != nil
		switch {
		case explicit:
			if patch.Status != nil {
				e.Status = *patch.Status
			}
			if patch.CurrentPage != nil {
				e.CurrentPage = *patch.CurrentPage
			}
			normalizeExplicit(e, today)
		case patch.CurrentPage != nil:
			applyProgress(e, *patch.CurrentPage, today)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "update library entry", "library entry not found")
	}
	return e, nil
}

// UpdateProgress moves an entry to page, clamping it to the book's length and
// applying the automatic status transitions.
func (s *Service) UpdateProgress(ctx context.Context, who Identity, entryID int64, page int) (*models.LibraryEntry, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}

	today := s.today()
	e, err := s.store.UpdateEntry(ctx, entryID, who.UserID, func(e *models.LibraryEntry) error {
		applyProgress(e, page, today)
		return nil
	})
	if err != nil {
		return nil, translate(err, "update progress", "library entry not found")
	}
	return e, nil
}

// SetRating rates an entry 1 to 5, whatever its status.
func (s *Service) SetRating(ctx context.Context, who Identity, entryID int64, rating int) (*models.LibraryEntry, error) {
	if err := checkIdentity(who); err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5").
			WithDetails(map[string]string{"rating": "must be between 1 and 5"})
	}

	e, err := s.store.UpdateEntry(ctx, entryID, who.UserID, func(e *models.LibraryEntry) error {
		e.Rating = &rating
		return nil
	})
	if err != nil {
		return nil, translate(err, "set rating", "library entry not found")
	}
	return e, nil
}

// RemoveEntry deletes one of the caller's entries and its sessions.
func (s *Service) RemoveEntry(ctx context.Context, who Identity, entryID int64) error {
	if err := checkIdentity(who); err != nil {
		return err
	}
	if err := s.store.DeleteEntry(ctx, entryID, who.UserID); err != nil {
		return translate(err, "remove library entry", "library entry not found")
	}
	return nil
}

// parseDate parses a validated YYYY-MM-DD value; empty means absent.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
