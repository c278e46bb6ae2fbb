package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/booker/internal/apperr"
	"github.com/hoanghai1803/booker/internal/library"
)

const maxBodyBytes = 1 << 20

type identityKey struct{}

// WithIdentity returns a context carrying the authenticated caller.
func WithIdentity(ctx context.Context, who library.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, who)
}

// identityFrom returns the caller stored by WithIdentity.
func identityFrom(r *http.Request) (library.Identity, bool) {
	who, ok := r.Context().Value(identityKey{}).(library.Identity)
	return who, ok && who.UserID > 0
}

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// writeAppError maps err to its HTTP status and writes the caller-safe
// message. Internal errors are logged with their cause; provider failures
// are logged as warnings.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal("unexpected error", err)
	}

	switch ae.Kind {
	case apperr.KindInternal:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	case apperr.KindUpstream, apperr.KindTimeout:
		slog.Warn("external catalog request failed", "path", r.URL.Path, "error", err)
	}

	writeJSON(w, ae.HTTPStatus(), errorBody{Error: apperr.PublicMessage(ae), Details: ae.Details})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

// parseID extracts an int64 from a chi URL parameter.
func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return 0, fmt.Errorf("missing URL parameter %q", param)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %q parameter: %w", param, err)
	}
	return id, nil
}

// queryInt returns the integer query parameter name, or def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("query parameter %q must be an integer", name)
	}
	return v, nil
}

// requireIdentity returns the caller or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (library.Identity, bool) {
	who, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
	}
	return who, ok
}

// pathIDs parses the named URL parameters, writing a 400 on the first
// invalid one.
func pathIDs(w http.ResponseWriter, r *http.Request, params ...string) ([]int64, bool) {
	ids := make([]int64, len(params))
	for i, p := range params {
		id, err := parseID(r, p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}
