package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/library"
	"github.com/hoanghai1803/booker/internal/models"
	"github.com/hoanghai1803/booker/internal/openlibrary"
)

func TestBookEndpoints(t *testing.T) {
	svc := newTestService(t, nil)
	dune := seedBook(t, AddBook(svc), "Dune", 412)
	seedBook(t, AddBook(svc), "Anathem", 937)

	var page models.BookPage
	w := serve(t, ListBooks(svc), newRequest(t, http.MethodGet, "/api/books?page=1&page_size=1", nil), &page)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Anathem", page.Books[0].Title)

	var got models.Book
	w = serve(t, GetBook(svc), newRequest(t, http.MethodGet, "/api/books/1", nil, "id", "1"), &got)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dune.ID, got.ID)

	w = serve(t, GetBook(svc), newRequest(t, http.MethodGet, "/api/books/99", nil, "id", "99"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var books []models.Book
	w = serve(t, SearchBooks(svc), newRequest(t, http.MethodGet, "/api/books/search?q=DUNE", nil), &books)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, books, 1)

	w = serve(t, AddBook(svc), newRequest(t, http.MethodPost, "/api/books", map[string]string{"title": "No Author"}), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddBook_DuplicateISBN(t *testing.T) {
	svc := newTestService(t, nil)
	body := map[string]any{"title": "Dune", "author": "Frank Herbert", "isbn": "9780441172719"}

	w := serve(t, AddBook(svc), newRequest(t, http.MethodPost, "/api/books", body), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(t, AddBook(svc), newRequest(t, http.MethodPost, "/api/books", body), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOpenLibraryEndpoints(t *testing.T) {
	result := openlibrary.SearchResult{
		ExternalKey: "/works/OL45804W",
		Title:       "Fantastic Mr Fox",
		Author:      "Roald Dahl",
		Subjects:    []string{"Foxes"},
		Publishers:  []string{"Puffin"},
		Source:      "openlibrary",
	}
	ext := &stubCatalog{results: []openlibrary.SearchResult{result}}
	svc := newTestService(t, ext)

	var results []openlibrary.SearchResult
	w := serve(t, SearchOpenLibrary(svc), newRequest(t, http.MethodGet, "/api/openlibrary/search?q=fox", nil), &results)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, results, 1)

	w = serve(t, SearchOpenLibrary(svc), newRequest(t, http.MethodGet, "/api/openlibrary/search?q=f", nil), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var details openlibrary.Details
	w = serve(t, GetWork(svc), newRequest(t, http.MethodGet, "/api/openlibrary/works/OL45804W", nil, "key", "OL45804W"), &details)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/works/OL45804W", details.Key)

	w = serve(t, LookupISBN(svc), newRequest(t, http.MethodGet, "/api/openlibrary/isbn/9780140328721", nil, "isbn", "9780140328721"), &details)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9780140328721", details.ISBN)

	var book models.Book
	w = serve(t, ImportBook(svc), newRequest(t, http.MethodPost, "/api/openlibrary/import", results[0]), &book)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Fantastic Mr Fox", book.Title)
	assert.Equal(t, "Foxes", book.Genre)

	var combined library.CombinedResults
	w = serve(t, SearchCatalog(svc), newRequest(t, http.MethodGet, "/api/catalog/search?q=fantastic", nil), &combined)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, combined.Local, 1)
	assert.Len(t, combined.External, 1)

	ext.err = apperr.Upstream("open library returned 503", nil)
	ext.results = nil
	w = serve(t, SearchOpenLibrary(svc), newRequest(t, http.MethodGet, "/api/openlibrary/search?q=fox", nil), nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	combined = library.CombinedResults{}
	w = serve(t, SearchCatalog(svc), newRequest(t, http.MethodGet, "/api/catalog/search?q=fantastic", nil), &combined)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, combined.Local, 1)
	assert.Equal(t, "open library returned 503", combined.ExternalError)
}
