package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/hotspot-trainer/internal/validation"
	"github.com/jwebster45206/hotspot-trainer/pkg/engine"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
	"github.com/jwebster45206/hotspot-trainer/pkg/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// UserIDHeader carries the caller's identity. Authentication happens
// upstream; the value is trusted as-is.
const UserIDHeader = "X-User-ID"

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound), errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrSessionCompleted),
		errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrNoExploration):
		return http.StatusConflict
	case errors.Is(err, validation.ErrInvalidRequest),
		errors.Is(err, engine.ErrUnknownNetwork),
		errors.Is(err, state.ErrInvalidPatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError logs and writes err with the status statusFor picks.
// Internal errors are not echoed to the client.
func writeDomainError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		writeError(w, log, status, "Internal server error")
		return
	}
	log.Debug("Request rejected", "status", status, "error", err)
	writeError(w, log, status, err.Error())
}

// decodeBody reads a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}
