package models

import "time"

// UserStats summarizes a user's whole library.
type UserStats struct {
	BooksCompleted  int     `json:"books_completed"`
	BooksReading    int     `json:"books_reading"`
	BooksWantToRead int     `json:"books_want_to_read"`
	BooksDNF        int     `json:"books_dnf"`
	TotalPagesRead  int     `json:"total_pages_read"`
	AverageRating   float64 `json:"average_rating"`
}

// Activity is one row of a user's recent library activity.
type Activity struct {
	EntryID      int64      `json:"entry_id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Status       Status     `json:"status"`
	Rating       *int       `json:"rating,omitempty"`
	DateStarted  *time.Time `json:"date_started,omitempty"`
	DateFinished *time.Time `json:"date_finished,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Dashboard bundles the overview shown on a user's home page.
type Dashboard struct {
	Stats          UserStats    `json:"stats"`
	YearlyProgress GoalProgress `json:"yearly_progress"`
	RecentActivity []Activity   `json:"recent_activity"`
}
