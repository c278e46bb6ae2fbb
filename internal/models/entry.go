package models

import (
	"encoding/json"
	"math"
	"time"
)

// Status is the reading state of a library entry.
type Status string

const (
	StatusWantToRead       Status = "want-to-read"
	StatusCurrentlyReading Status = "currently-reading"
	StatusCompleted        Status = "completed"
	StatusDNF              Status = "dnf"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWantToRead, StatusCurrentlyReading, StatusCompleted, StatusDNF:
		return true
	}
	return false
}

// Terminal reports whether progress edits may no longer change the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDNF
}

// LibraryEntry is one user's relationship to one book.
type LibraryEntry struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	BookID       int64      `json:"book_id"`
	Book         *Book      `json:"book,omitempty"`
	Status       Status     `json:"status"`
	Rating       *int       `json:"rating,omitempty"`
	Review       string     `json:"review,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CurrentPage  int        `json:"current_page"`
	TotalPages   *int       `json:"total_pages,omitempty"`
	DateAdded    time.Time  `json:"date_added"`
	DateStarted  *time.Time `json:"date_started,omitempty"`
	DateFinished *time.Time `json:"date_finished,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// KnownTotal returns the page count and whether it is usable for progress math.
func (e *LibraryEntry) KnownTotal() (int, bool) {
	if e.TotalPages == nil || *e.TotalPages <= 0 {
		return 0, false
	}
	return *e.TotalPages, true
}

// ProgressPercent returns round(current/total*100), or nil when the total is
// unknown.
func (e *LibraryEntry) ProgressPercent() *int {
	total, ok := e.KnownTotal()
	if !ok {
		return nil
	}
	p := int(math.Round(float64(e.CurrentPage) / float64(total) * 100))
	return &p
}

// MarshalJSON adds the derived progress_percent to the stored fields.
func (e LibraryEntry) MarshalJSON() ([]byte, error) {
	type entry LibraryEntry
	return json.Marshal(struct {
		entry
		ProgressPercent *int `json:"progress_percent,omitempty"`
	}{entry(e), e.ProgressPercent()})
}
