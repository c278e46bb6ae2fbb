package models

import "time"

// Book is a canonical catalog record. Books imported from Open Library carry
// the provider's key in ExternalKey.
type Book struct {
	ID            int64     `json:"id"`
	ExternalKey   string    `json:"external_key,omitempty"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn,omitempty"`
	Description   string    `json:"description,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	Pages         *int      `json:"pages,omitempty"`
	PublishedYear *int      `json:"published_year,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	Publisher     string    `json:"publisher,omitempty"`
	CoverURL      string    `json:"cover_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// BookPage is one page of the catalog listing plus pagination metadata.
type BookPage struct {
	Books      []Book `json:"books"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}
