package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/booker/internal/library"
	"github.com/hoanghai1803/booker/internal/openlibrary"
)

// SearchOpenLibrary handles GET /api/openlibrary/search?q={query}&limit={limit}.
func SearchOpenLibrary(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 10)
		if err != nil {
			writeAppError(w, r, err)
			return
		}

		results, err := svc.SearchExternal(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// GetWork handles GET /api/openlibrary/works/{key}, where key is a bare work
// id such as OL45804W.
func GetWork(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := "/works/" + chi.URLParam(r, "key")

		details, err := svc.GetExternalDetails(r.Context(), key)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

// LookupISBN handles GET /api/openlibrary/isbn/{isbn}.
func LookupISBN(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.LookupISBN(r.Context(), chi.URLParam(r, "isbn"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

// ImportBook handles POST /api/openlibrary/import. The body is a search
// result as returned by SearchOpenLibrary; the response is the local book.
func ImportBook(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body openlibrary.SearchResult
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}

		book, err := svc.ImportExternal(r.Context(), body)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	}
}
