package models

import "time"

// Bookshelf is a named, user-owned collection of books.
type Bookshelf struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	BookCount   int       `json:"book_count"`
	CreatedAt   time.Time `json:"created_at"`
}
