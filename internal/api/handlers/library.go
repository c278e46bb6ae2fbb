package handlers

import (
	"net/http"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/library"
)

// ListLibrary handles GET /api/me/library?status={status}. It returns the
// caller's entries, optionally filtered by status.
func ListLibrary(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		entries, err := svc.ListEntries(r.Context(), who, r.URL.Query().Get("status"))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// UpsertLibraryEntry handles POST /api/me/library. It creates the caller's
// entry for a book or replaces the existing one in full.
func UpsertLibraryEntry(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var body library.EntryInput
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}

		entry, err := svc.UpsertEntry(r.Context(), who, body)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// GetLibraryEntry handles GET /api/me/library/{id}.
func GetLibraryEntry(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		entry, err := svc.GetEntry(r.Context(), who, ids[0])
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// PatchLibraryEntry handles PATCH /api/me/library/{id}. Fields absent from
// the body keep their stored values.
func PatchLibraryEntry(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		var body library.EntryPatch
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}

		entry, err := svc.UpdateEntry(r.Context(), who, ids[0], body)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// DeleteLibraryEntry handles DELETE /api/me/library/{id}.
func DeleteLibraryEntry(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		if err := svc.RemoveEntry(r.Context(), who, ids[0]); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateProgress handles PUT /api/me/library/{id}/progress with body
// {"current_page": n}.
func UpdateProgress(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		var body struct {
			CurrentPage *int `json:"current_page"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}
		if body.CurrentPage == nil {
			writeAppError(w, r, apperr.Validation("current_page is required"))
			return
		}

		entry, err := svc.UpdateProgress(r.Context(), who, ids[0], *body.CurrentPage)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// SetRating handles PUT /api/me/library/{id}/rating with body {"rating": n}.
func SetRating(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		var body struct {
			Rating *int `json:"rating"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}
		if body.Rating == nil {
			writeAppError(w, r, apperr.Validation("rating is required"))
			return
		}

		entry, err := svc.SetRating(r.Context(), who, ids[0], *body.Rating)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}
