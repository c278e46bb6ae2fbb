package handlers

import (
	"net/http"

	"github.com/hoanghai1803/booker/internal/library"
)

// ListBooks handles GET /api/books?page={page}&page_size={size}. It returns
// one page of the catalog ordered by title.
func ListBooks(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryInt(r, "page", 1)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		size, err := queryInt(r, "page_size", 20)
		if err != nil {
			writeAppError(w, r, err)
			return
		}

		p, err := svc.ListBooks(r.Context(), page, size)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// GetBook handles GET /api/books/{id}.
func GetBook(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		book, err := svc.GetBook(r.Context(), id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	}
}

// AddBook handles POST /api/books. It stores a manually entered book.
func AddBook(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body library.NewBook
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}

		book, err := svc.AddBook(r.Context(), body)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, book)
	}
}

// SearchBooks handles GET /api/books/search?q={query}&limit={limit}. It
// matches titles and authors in the local catalog.
func SearchBooks(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 20)
		if err != nil {
			writeAppError(w, r, err)
			return
		}

		books, err := svc.SearchLocal(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, books)
	}
}

// SearchCatalog handles GET /api/catalog/search?q={query}&limit={limit}. It
// searches the local catalog and Open Library together; a provider failure
// is reported in the body next to the local results.
func SearchCatalog(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 10)
		if err != nil {
			writeAppError(w, r, err)
			return
		}

		res, err := svc.SearchAll(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
