package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
)

// StatsReader answers aggregate questions about finished runs.
type StatsReader interface {
	Stats(ctx context.Context, userID string) (archive.Stats, error)
	Recent(ctx context.Context, userID string, limit int) ([]archive.Completion, error)
}

type StatsResponse struct {
	archive.Stats
	Recent []archive.Completion `json:"recent"`
}

const (
	defaultRecent = 10
	maxRecent     = 100
)

// StatsHandler serves GET /v1/stats. The X-User-ID header scopes the
// numbers to one learner; without it they cover everyone.
type StatsHandler struct {
	log   *slog.Logger
	stats StatsReader
}

func NewStatsHandler(log *slog.Logger, stats StatsReader) *StatsHandler {
	return &StatsHandler{log: log, stats: stats}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := defaultRecent
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxRecent {
			writeError(w, h.log, http.StatusBadRequest, "recent must be between 0 and 100")
			return
		}
		limit = n
	}

	userID := r.Header.Get(UserIDHeader)
	ctx := r.Context()

	st, err := h.stats.Stats(ctx, userID)
	if err != nil {
		h.log.Error("Failed to compute stats", "error", err, "user_id", userID)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	recent := make([]archive.Completion, 0)
	if limit > 0 {
		recent, err = h.stats.Recent(ctx, userID, limit)
		if err != nil {
			h.log.Error("Failed to list recent completions", "error", err, "user_id", userID)
			writeError(w, h.log, http.StatusInternalServerError, "Failed to compute stats")
			return
		}
	}
	if recent == nil {
		recent = make([]archive.Completion, 0)
	}
	writeJSON(w, h.log, http.StatusOK, StatsResponse{Stats: st, Recent: recent})
}
