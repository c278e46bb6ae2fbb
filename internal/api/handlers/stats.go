package handlers

import (
	"net/http"

	"github.com/hoanghai1803/booker/internal/library"
)

// GetStats handles GET /api/me/stats.
func GetStats(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		stats, err := svc.Stats(r.Context(), who)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// GetActivity handles GET /api/me/activity?limit={limit}.
func GetActivity(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		limit, err := queryInt(r, "limit", 10)
		if err != nil {
			writeAppError(w, r, err)
			return
		}

		activity, err := svc.RecentActivity(r.Context(), who, limit)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, activity)
	}
}

// GetDashboard handles GET /api/me/dashboard?year={year}.
func GetDashboard(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		year, ok := yearParam(svc, w, r)
		if !ok {
			return
		}

		dashboard, err := svc.Dashboard(r.Context(), who, year)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	}
}
