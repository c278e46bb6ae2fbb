package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghai1803/booker/internal/config"
	"github.com/hoanghai1803/booker/internal/library"
	"github.com/hoanghai1803/booker/internal/models"
	"github.com/hoanghai1803/booker/internal/openlibrary"
	"github.com/hoanghai1803/booker/internal/storage"
)

const olSearchBody = `{"numFound":1,"docs":[{
	"key":"/works/OL45804W",
	"title":"Fantastic Mr Fox",
	"author_name":["Roald Dahl"],
	"first_publish_year":1970,
	"number_of_pages_median":96,
	"isbn":["9780140328721"],
	"cover_i":6498519,
	"publisher":["Puffin"],
	"subject":["Foxes","Farmers"]
}]}`

// newTestServer wires the full stack over an in-memory database and a fake
// Open Library server.
func newTestServer(t *testing.T) (*library.Service, *chi.Mux) {
	t.Helper()

	ol := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search.json":
			fmt.Fprint(w, olSearchBody)
		case "/works/OL45804W.json":
			fmt.Fprint(w, `{"key":"/works/OL45804W","title":"Fantastic Mr Fox","description":{"type":"/type/text","value":"A clever fox."}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ol.Close)

	db, err := storage.OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db))
	store := storage.NewStore(db)

	client := openlibrary.NewClient(openlibrary.Options{
		BaseURL: ol.URL,
		Timeout: 2 * time.Second,
	})
	svc := library.NewService(store, client, library.WithClock(func() time.Time {
		return time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	}))

	cfg := &config.Config{Server: config.ServerConfig{CORSOrigins: []string{"http://localhost:5173"}}}
	return svc, NewRouter(svc, store, cfg)
}

func do(t *testing.T, h http.Handler, method, path, userID string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		r.Header.Set(headerUserID, userID)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func TestHealthz(t *testing.T) {
	_, router := newTestServer(t)

	w := do(t, router, http.MethodGet, "/healthz", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMeRoutesRequireIdentity(t *testing.T) {
	_, router := newTestServer(t)

	w := do(t, router, http.MethodGet, "/api/me/library", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	_, router := newTestServer(t)

	r := httptest.NewRequest(http.MethodOptions, "/api/me/library", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.Header.Set("Access-Control-Request-Headers", headerUserID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, r)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Less(t, w.Code, 300)
}

// TestImportAndTrack walks a book from an Open Library search through import,
// tracking, a reading session and the yearly goal.
func TestImportAndTrack(t *testing.T) {
	_, router := newTestServer(t)

	var results []openlibrary.SearchResult
	w := do(t, router, http.MethodGet, "/api/openlibrary/search?q=fantastic+fox", "", nil, &results)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, results, 1)
	assert.Equal(t, "Roald Dahl", results[0].Author)

	var book models.Book
	w = do(t, router, http.MethodPost, "/api/openlibrary/import", "", results[0], &book)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A clever fox.", book.Description)
	assert.Equal(t, "1970-01-01", book.PublishedDate)

	var entry models.LibraryEntry
	w = do(t, router, http.MethodPost, "/api/me/library", "7", map[string]any{"book_id": book.ID}, &entry)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Entry models.LibraryEntry `json:"entry"`
	}
	w = do(t, router, http.MethodPost, fmt.Sprintf("/api/me/library/%d/sessions", entry.ID), "7",
		map[string]int{"start_page": 0, "end_page": 96}, &res)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.StatusCompleted, res.Entry.Status)

	var progress models.GoalProgress
	w = do(t, router, http.MethodGet, "/api/me/goals/progress?year=2025", "7", nil, &progress)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, progress.BooksCompleted)
	assert.Equal(t, 96, progress.PagesCompleted)
	assert.Equal(t, 12, progress.BooksTarget)

	// Another user cannot see the entry.
	w = do(t, router, http.MethodGet, fmt.Sprintf("/api/me/library/%d", entry.ID), "8", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpstreamFailureStatus(t *testing.T) {
	_, router := newTestServer(t)

	w := do(t, router, http.MethodGet, "/api/openlibrary/works/OL1W", "", nil, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(t, router, http.MethodGet, "/api/openlibrary/isbn/9780000000002", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/openlibrary/search?q=a", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
