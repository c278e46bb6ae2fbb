package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/library"
	"github.com/hoanghai1803/booker/internal/openlibrary"
	"github.com/hoanghai1803/booker/internal/storage"
)

var testUser = library.Identity{UserID: 1, Username: "alice"}

// stubCatalog serves canned Open Library results.
type stubCatalog struct {
	results []openlibrary.SearchResult
	err     error
}

func (s *stubCatalog) Search(_ context.Context, query string, _ int) ([]openlibrary.SearchResult, error) {
	if len(query) < 2 {
		return nil, apperr.Validation("search query must be at least 2 characters")
	}
	return s.results, s.err
}

func (s *stubCatalog) GetDetails(_ context.Context, key string) (*openlibrary.Details, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &openlibrary.Details{Key: key, Title: "Stub", Source: "openlibrary"}, nil
}

func (s *stubCatalog) LookupISBN(_ context.Context, isbn string) (*openlibrary.Details, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &openlibrary.Details{Key: "/books/OL1M", ISBN: isbn, Source: "openlibrary"}, nil
}

// newTestService creates a library service over an in-memory SQLite store
// with migrations applied and testUser registered.
func newTestService(t *testing.T, ext library.ExternalCatalog) *library.Service {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	if ext == nil {
		ext = &stubCatalog{}
	}
	svc := library.NewService(storage.NewStore(db), ext, library.WithClock(func() time.Time {
		return time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	}))
	if err := svc.EnsureUser(context.Background(), testUser); err != nil {
		t.Fatalf("registering test user: %v", err)
	}
	return svc
}

// newRequest builds a request with an optional JSON body, the test user's
// identity and chi URL params given as name/value pairs.
func newRequest(t *testing.T, method, target string, body any, params ...string) *http.Request {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, target, rd)

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(WithIdentity(ctx, testUser))
}

// serve runs h and decodes a JSON response into out when out is non-nil.
func serve(t *testing.T, h http.HandlerFunc, r *http.Request, out any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding response %q: %v", w.Body.String(), err)
		}
	}
	return w
}
