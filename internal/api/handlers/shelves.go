package handlers

import (
	"net/http"

	"github.com/hoanghai1803/booker/internal/library"
)

// ListShelves handles GET /api/me/shelves.
func ListShelves(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		shelves, err := svc.ListShelves(r.Context(), who)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, shelves)
	}
}

// CreateShelf handles POST /api/me/shelves.
func CreateShelf(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var body library.ShelfInput
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}

		shelf, err := svc.CreateShelf(r.Context(), who, body)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, shelf)
	}
}

// DeleteShelf handles DELETE /api/me/shelves/{id}.
func DeleteShelf(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		if err := svc.DeleteShelf(r.Context(), who, ids[0]); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ShelfBooks handles GET /api/me/shelves/{id}/books.
func ShelfBooks(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		books, err := svc.ShelfBooks(r.Context(), who, ids[0])
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, books)
	}
}

// AddToShelf handles PUT /api/me/shelves/{id}/books/{bookId}.
func AddToShelf(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id", "bookId")
		if !ok {
			return
		}

		if err := svc.AddToShelf(r.Context(), who, ids[0], ids[1]); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveFromShelf handles DELETE /api/me/shelves/{id}/books/{bookId}.
func RemoveFromShelf(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id", "bookId")
		if !ok {
			return
		}

		if err := svc.RemoveFromShelf(r.Context(), who, ids[0], ids[1]); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
