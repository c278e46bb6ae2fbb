package library

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/models"
	"github.com/hoanghai1803/booker/internal/openlibrary"
	"github.com/hoanghai1803/booker/internal/storage"
)

// fakeCatalog is an in-memory ExternalCatalog.
type fakeCatalog struct {
	mu          sync.Mutex
	results     []openlibrary.SearchResult
	details     map[string]*openlibrary.Details
	searchErr   error
	detailsErr  error
	searchCalls int
}

func (f *fakeCatalog) Search(_ context.Context, query string, _ int) ([]openlibrary.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if len(query) < 2 {
		return nil, apperr.Validation("search query must be at least 2 characters")
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeCatalog) GetDetails(_ context.Context, key string) (*openlibrary.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	if d, ok := f.details[key]; ok {
		return d, nil
	}
	return nil, apperr.Upstream("open library returned 404", nil)
}

func (f *fakeCatalog) LookupISBN(_ context.Context, isbn string) (*openlibrary.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.details {
		if d.ISBN == isbn {
			return d, nil
		}
	}
	return nil, apperr.NotFound("no edition found for isbn %s", isbn)
}

var alice = Identity{UserID: 1, Username: "alice"}

func newTestService(t *testing.T, ext ExternalCatalog) (*Service, *storage.Store) {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db))

	if ext == nil {
		ext = &fakeCatalog{}
	}
	store := storage.NewStore(db)
	svc := NewService(store, ext, WithClock(func() time.Time {
		return testToday.Add(15 * time.Hour)
	}))
	require.NoError(t, svc.EnsureUser(context.Background(), alice))
	return svc, store
}

func addBook(t *testing.T, svc *Service, title string, pages *int) *models.Book {
	t.Helper()
	b, err := svc.AddBook(context.Background(), NewBook{Title: title, Author: "Test Author", Pages: pages})
	require.NoError(t, err)
	return b
}

func addEntry(t *testing.T, svc *Service, who Identity, bookID int64) *models.LibraryEntry {
	t.Helper()
	e, err := svc.UpsertEntry(context.Background(), who, EntryInput{BookID: bookID})
	require.NoError(t, err)
	return e
}

func date(s string) *time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}
