package library

import (
	"time"

	"github.com/hoanghai1803/booker/internal/models"
)

// clampPage bounds page to [0, total], or to >= 0 when the total is unknown.
func clampPage(e *models.LibraryEntry, page int) int {
	if page < 0 {
		return 0
	}
	if total, ok := e.KnownTotal(); ok && page > total {
		return total
	}
	return page
}

// reachedEnd reports whether the entry's position is the last page of a book
// with a known length.
func reachedEnd(e *models.LibraryEntry) bool {
	total, ok := e.KnownTotal()
	return ok && e.CurrentPage == total
}

// applyProgress moves the entry to page and applies the automatic status
// transitions of a progress edit:
//
//   - completed and dnf entries keep their status;
//   - reaching the last page completes the entry and stamps dateFinished;
//   - the first positive progress on a want-to-read entry starts it and
//     stamps dateStarted.
//
// Dates already set are never overwritten, so repeating the same edit is a
// no-op.
func applyProgress(e *models.LibraryEntry, page int, today time.Time) {
	e.CurrentPage = clampPage(e, page)

	if e.Status.Terminal() {
		return
	}

	if reachedEnd(e) {
		e.Status = models.StatusCompleted
		stamp(&e.DateStarted, today)
		stamp(&e.DateFinished, today)
		return
	}

	if e.Status == models.StatusWantToRead && e.CurrentPage > 0 {
		e.Status = models.StatusCurrentlyReading
		stamp(&e.DateStarted, today)
	}
}

// normalizeExplicit reconciles an entry whose status was set by the user with
// its position and dates:
//
//   - completed moves a book of known length to its last page;
//   - a position on the last page completes want-to-read and
//     currently-reading entries;
//   - want-to-read with positive progress or a start date becomes
//     currently-reading;
//   - dnf is kept as given.
func normalizeExplicit(e *models.LibraryEntry, today time.Time) {
	e.CurrentPage = clampPage(e, e.CurrentPage)

	switch e.Status {
	case models.StatusCompleted:
		if total, ok := e.KnownTotal(); ok {
			e.CurrentPage = total
		}
		stamp(&e.DateFinished, today)
	case models.StatusWantToRead, models.StatusCurrentlyReading:
		if reachedEnd(e) {
			e.Status = models.StatusCompleted
			stamp(&e.DateStarted, today)
			stamp(&e.DateFinished, today)
			return
		}
		if e.Status == models.StatusWantToRead && (e.CurrentPage > 0 || e.DateStarted != nil) {
			e.Status = models.StatusCurrentlyReading
		}
		if e.Status == models.StatusCurrentlyReading {
			stamp(&e.DateStarted, today)
		}
	}
}

// stamp sets *dst to day unless it is already set.
func stamp(dst **time.Time, day time.Time) {
	if *dst == nil {
		d := day
		*dst = &d
	}
}
