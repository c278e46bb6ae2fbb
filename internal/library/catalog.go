package library

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/models"
	"github.com/hoanghai1803/booker/internal/openlibrary"
	"github.com/hoanghai1803/booker/internal/storage"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	maxPageSize        = 100
)

// NewBook holds the fields of a manually added catalog record.
type NewBook struct {
	Title         string `json:"title" validate:"required,max=500"`
	Author        string `json:"author" validate:"required,max=500"`
	ISBN          string `json:"isbn" validate:"omitempty,max=20"`
	Description   string `json:"description"`
	Genre         string `json:"genre" validate:"max=100"`
	Pages         *int   `json:"pages" validate:"omitempty,gt=0"`
	PublishedYear *int   `json:"published_year" validate:"omitempty,gte=0,lte=9999"`
	PublishedDate string `json:"published_date" validate:"omitempty,datetime=2006-01-02"`
	Publisher     string `json:"publisher" validate:"max=200"`
	CoverURL      string `json:"cover_url" validate:"omitempty,url"`
}

// CombinedResults is the outcome of searching both catalogs at once.
// ExternalError is set instead of failing when only the provider failed.
type CombinedResults struct {
	Local         []models.Book              `json:"local"`
	External      []openlibrary.SearchResult `json:"external"`
	ExternalError string                     `json:"external_error,omitempty"`
}

// AddBook stores a manually entered book.
func (s *Service) AddBook(ctx context.Context, in NewBook) (*models.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:         in.Title,
		Author:        in.Author,
		ISBN:          openlibrary.NormalizeISBN(in.ISBN),
		Description:   in.Description,
		Genre:         in.Genre,
		Pages:         in.Pages,
		PublishedYear: in.PublishedYear,
		PublishedDate: in.PublishedDate,
		Publisher:     in.Publisher,
		CoverURL:      in.CoverURL,
	}
	id, err := s.store.AddBook(ctx, book)
	if err != nil {
		return nil, translate(err, "add book", "")
	}
	return s.GetBook(ctx, id)
}

// GetBook returns a catalog record.
func (s *Service) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	b, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, translate(err, "load book", "book not found")
	}
	return b, nil
}

// ListBooks returns one page of the catalog ordered by title.
func (s *Service) ListBooks(ctx context.Context, page, pageSize int) (*models.BookPage, error) {
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	p, err := s.store.ListBooks(ctx, page, pageSize)
	if err != nil {
		return nil, translate(err, "list books", "")
	}
	return p, nil
}

// SearchLocal matches query against the titles and authors of the local
// catalog, ignoring case.
func (s *Service) SearchLocal(ctx context.Context, query string, limit int) ([]models.Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.Validation("search query is required")
	}
	books, err := s.store.SearchBooks(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, translate(err, "search books", "")
	}
	return books, nil
}

// SearchExternal queries the external provider.
func (s *Service) SearchExternal(ctx context.Context, query string, limit int) ([]openlibrary.SearchResult, error) {
	return s.external.Search(ctx, query, limit)
}

// GetExternalDetails returns the provider's detailed record for key.
func (s *Service) GetExternalDetails(ctx context.Context, key string) (*openlibrary.Details, error) {
	return s.external.GetDetails(ctx, key)
}

// LookupISBN returns the provider's edition record for an ISBN.
func (s *Service) LookupISBN(ctx context.Context, isbn string) (*openlibrary.Details, error) {
	return s.external.LookupISBN(ctx, isbn)
}

// SearchAll runs the local and external searches concurrently. A provider
// failure is reported in the result; a local failure fails the call.
func (s *Service) SearchAll(ctx context.Context, query string, limit int) (*CombinedResults, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return nil, apperr.Validation("search query must be at least 2 characters")
	}

	var (
		res         CombinedResults
		externalErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		books, err := s.SearchLocal(gctx, query, limit)
		if err != nil {
			return err
		}
		res.Local = books
		return nil
	})
	g.Go(func() error {
		results, err := s.external.Search(gctx, query, limit)
		if err != nil {
			externalErr = err
			return nil
		}
		res.External = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if externalErr != nil {
		slog.Warn("external search failed", "query", query, "error", externalErr)
		res.ExternalError = apperr.PublicMessage(externalErr)
	}
	if res.External == nil {
		res.External = []openlibrary.SearchResult{}
	}
	return &res, nil
}

// ImportExternal adds a provider search result to the local catalog. A book
// already imported under the same key or ISBN is returned as is. The
// provider's description is used when its details can be fetched.
func (s *Service) ImportExternal(ctx context.Context, result openlibrary.SearchResult) (*models.Book, error) {
	key, err := openlibrary.NormalizeKey(result.ExternalKey)
	if err != nil {
		return nil, err
	}
	result.ExternalKey = key
	if strings.TrimSpace(result.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	result.ISBN = openlibrary.NormalizeISBN(result.ISBN)

	if existing, err := s.findImported(ctx, result); err != nil || existing != nil {
		return existing, err
	}

	details, err := s.external.GetDetails(ctx, key)
	if err != nil {
		slog.Warn("importing without details", "key", key, "error", err)
		details = nil
	}

	book := result.ToBook(details)
	id, err := s.store.AddBook(ctx, &book)
	if errors.Is(err, storage.ErrConflict) {
		// Lost a race with a concurrent import of the same book.
		if existing, ferr := s.findImported(ctx, result); ferr == nil && existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, translate(err, "import book", "")
	}
	return s.GetBook(ctx, id)
}

// findImported returns the local copy of an external result, or nil.
func (s *Service) findImported(ctx context.Context, result openlibrary.SearchResult) (*models.Book, error) {
	b, err := s.store.GetBookByExternalKey(ctx, result.ExternalKey)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, translate(err, "look up imported book", "")
	}
	if result.ISBN == "" {
		return nil, nil
	}

	b, err = s.store.GetBookByISBN(ctx, result.ISBN)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, translate(err, "look up imported book", "")
	}
	return nil, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSearchLimit
	case limit > maxSearchLimit:
		return maxSearchLimit
	}
	return limit
}
