package handlers

import (
	"net/http"

	"github.com/hoanghai1803/booker/internal/storage"
)

// Health handles GET /healthz. It reports unavailable when the database
// cannot be reached.
func Health(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DB().PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
