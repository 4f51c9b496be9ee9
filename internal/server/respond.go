package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"aquascope/internal/auth"
	"aquascope/internal/chemistry"
	"aquascope/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

// respondErr maps domain errors onto HTTP status codes. Unknown errors
// become opaque 500s so internals never leak to clients.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	msg := err.Error()
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, chemistry.ErrUnreachable), errors.Is(err, chemistry.ErrInvalidFraction):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err))
		msg = "internal server error"
	}
	s.respondJSON(w, status, errorResponse{Error: msg})
}

// errBadRequest marks malformed client input.
var errBadRequest = errors.New("bad request")

func badRequestf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errBadRequest)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequestf("invalid request body: %v", err)
	}
	return nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequestf("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryLimit reads an optional positive limit query parameter.
func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseUUIDString(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequestf("invalid id %q", raw)
	}
	return id, nil
}
