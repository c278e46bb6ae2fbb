package handlers

import (
	"net/http"

	"github.com/hoanghai1803/booker/internal/library"
)

// yearParam reads ?year, defaulting to the service's current year.
func yearParam(svc *library.Service, w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := queryInt(r, "year", svc.CurrentYear())
	if err != nil {
		writeAppError(w, r, err)
		return 0, false
	}
	return year, true
}

// GetGoal handles GET /api/me/goals?year={year}. The goal is created with
// the default target on first access.
func GetGoal(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		year, ok := yearParam(svc, w, r)
		if !ok {
			return
		}

		goal, err := svc.GetGoal(r.Context(), who, year)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, goal)
	}
}

// SetGoal handles PUT /api/me/goals?year={year}.
func SetGoal(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		year, ok := yearParam(svc, w, r)
		if !ok {
			return
		}

		var body library.GoalInput
		if err := decodeJSON(w, r, &body); err != nil {
			writeAppError(w, r, err)
			return
		}

		goal, err := svc.SetGoal(r.Context(), who, year, body)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, goal)
	}
}

// GetGoalProgress handles GET /api/me/goals/progress?year={year}.
func GetGoalProgress(svc *library.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		year, ok := yearParam(svc, w, r)
		if !ok {
			return
		}

		progress, err := svc.GetProgress(r.Context(), who, year)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, progress)
	}
}
