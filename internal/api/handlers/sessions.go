package handlers

import (
	"net/http"

	"github.com/hoanghai1803/booker/internal/library"
)

// ListSessions handles GET /api/me/library/{id}/sessions.
func ListSessions(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		sessions, err := svc.ListSessions(r.Context(), who, ids[0])
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

// RecordSession handles POST /api/me/library/{id}/sessions. The response
// carries the new session and the advanced entry.
func RecordSession(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		var body library.SessionInput
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}

		res, err := svc.RecordSession(r.Context(), who, ids[0], body)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// RepairProgress handles POST /api/me/library/{id}/repair. It recomputes the
// entry's position from its recorded sessions.
func RepairProgress(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		ids, ok := pathIDs(w, r, "id")
		if !ok {
			return
		}

		entry, err := svc.RepairProgress(r.Context(), who, ids[0])
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}
