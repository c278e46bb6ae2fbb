package models

import "time"

// ReadingSession is an immutable record of pages read in one sitting.
type ReadingSession struct {
	ID              int64     `json:"id"`
	EntryID         int64     `json:"entry_id"`
	StartPage       int       `json:"start_page"`
	EndPage         int       `json:"end_page"`
	SessionDate     time.Time `json:"session_date"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// PagesRead is the number of pages covered by the session.
func (s *ReadingSession) PagesRead() int {
	return s.EndPage - s.StartPage
}
