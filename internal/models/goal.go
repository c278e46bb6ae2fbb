package models

import "time"

// ReadingGoal holds a user's targets for one calendar year. Completed counts
// are never stored; see GoalProgress.
type ReadingGoal struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Year        int       `json:"year"`
	BooksTarget int       `json:"books_target"`
	PagesTarget *int      `json:"pages_target,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GoalProgress is a goal's targets alongside the counts derived from the
// user's completed entries.
type GoalProgress struct {
	Year           int  `json:"year"`
	BooksTarget    int  `json:"books_target"`
	BooksCompleted int  `json:"books_completed"`
	PagesTarget    *int `json:"pages_target,omitempty"`
	PagesCompleted int  `json:"pages_completed"`
	BooksPercent   int  `json:"books_percent"`
	PagesPercent   *int `json:"pages_percent,omitempty"`
}
