package openlibrary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hoanghai1803/booker/internal/models"
)

const (
	sourceName = "Open Library"

	unknownTitle       = "Unknown Title"
	unknownAuthor      = "Unknown Author"
	unknownGenre       = "Unknown"
	unknownPublisher   = "Unknown"
	defaultDescription = "No description available"

	maxPublishers = 3
	maxSubjects   = 5
)

// SearchResult is one normalized search hit. Its fields map one-to-one onto
// models.Book through ToBook.
type SearchResult struct {
	ExternalKey      string   `json:"external_key"`
	Title            string   `json:"title"`
	Author           string   `json:"author"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
	Pages            *int     `json:"pages,omitempty"`
	ISBN             string   `json:"isbn,omitempty"`
	Publishers       []string `json:"publishers"`
	Subjects         []string `json:"subjects"`
	CoverURL         string   `json:"cover_url,omitempty"`
	CoverLargeURL    string   `json:"cover_large_url,omitempty"`
	Source           string   `json:"source"`
}

// Details is the detailed record for one work or edition.
type Details struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Subjects      []string `json:"subjects"`
	Publishers    []string `json:"publishers"`
	PublishDate   string   `json:"publish_date,omitempty"`
	Pages         *int     `json:"pages,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	CoverLargeURL string   `json:"cover_large_url,omitempty"`
	Source        string   `json:"source"`
}

// ToBook converts a search result into a catalog record. When details is
// non-nil and carries a description, it replaces the default one.
func (r *SearchResult) ToBook(details *Details) models.Book {
	book := models.Book{
		ExternalKey: r.ExternalKey,
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		Pages:       r.Pages,
		Genre:       firstOr(r.Subjects, unknownGenre),
		Description: defaultDescription,
		Publisher:   firstOr(r.Publishers, unknownPublisher),
		CoverURL:    r.CoverURL,
	}
	if r.FirstPublishYear != nil {
		year := *r.FirstPublishYear
		book.PublishedYear = &year
		book.PublishedDate = fmt.Sprintf("%04d-01-01", year)
	}
	if details != nil && strings.TrimSpace(details.Description) != "" {
		book.Description = details.Description
	}
	return book
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	NumberOfPagesMed int      `json:"number_of_pages_median"`
	ISBN             []string `json:"isbn"`
	CoverI           int      `json:"cover_i"`
	Publisher        []string `json:"publisher"`
	Subject          []string `json:"subject"`
}

type detailsResponse struct {
	Key           string          `json:"key"`
	Title         string          `json:"title"`
	Description   json.RawMessage `json:"description"`
	Subjects      []string        `json:"subjects"`
	Publishers    []string        `json:"publishers"`
	PublishDate   string          `json:"publish_date"`
	NumberOfPages int             `json:"number_of_pages"`
	Covers        []int           `json:"covers"`
}

func (c *Client) normalizeDoc(doc *searchDoc) SearchResult {
	r := SearchResult{
		ExternalKey: doc.Key,
		Title:       orDefault(doc.Title, unknownTitle),
		Author:      unknownAuthor,
		Publishers:  truncate(doc.Publisher, maxPublishers),
		Subjects:    truncate(doc.Subject, maxSubjects),
		Source:      sourceName,
	}
	if len(doc.AuthorName) > 0 {
		r.Author = strings.Join(doc.AuthorName, ", ")
	}
	if doc.FirstPublishYear > 0 {
		year := doc.FirstPublishYear
		r.FirstPublishYear = &year
	}
	if doc.NumberOfPagesMed > 0 {
		pages := doc.NumberOfPagesMed
		r.Pages = &pages
	}
	if len(doc.ISBN) > 0 {
		r.ISBN = doc.ISBN[0]
	}
	if doc.CoverI > 0 {
		r.CoverURL = c.coverURL(doc.CoverI, "M")
		r.CoverLargeURL = c.coverURL(doc.CoverI, "L")
	}
	return r
}

func (c *Client) normalizeDetails(raw *detailsResponse) *Details {
	d := &Details{
		Key:         raw.Key,
		Title:       orDefault(raw.Title, unknownTitle),
		Description: decodeDescription(raw.Description),
		Subjects:    nonNil(raw.Subjects),
		Publishers:  nonNil(raw.Publishers),
		PublishDate: raw.PublishDate,
		Source:      sourceName,
	}
	if raw.NumberOfPages > 0 {
		pages := raw.NumberOfPages
		d.Pages = &pages
	}
	for _, id := range raw.Covers {
		if id > 0 {
			d.CoverURL = c.coverURL(id, "M")
			d.CoverLargeURL = c.coverURL(id, "L")
			break
		}
	}
	return d
}

// coverURL builds the deterministic cover image URL for a cover id.
func (c *Client) coverURL(coverID int, size string) string {
	return fmt.Sprintf("%s/id/%d-%s.jpg", c.coversURL, coverID, size)
}

// decodeDescription accepts either a plain string or a {"type","value"}
// text object.
func decodeDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

func truncate(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return nonNil(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func firstOr(s []string, fallback string) string {
	if len(s) > 0 && s[0] != "" {
		return s[0]
	}
	return fallback
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
