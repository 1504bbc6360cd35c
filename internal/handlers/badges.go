package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
)

type BadgeHandler struct {
	log    *slog.Logger
	badges *grading.BadgeCatalog
}

func NewBadgeHandler(log *slog.Logger, badges *grading.BadgeCatalog) *BadgeHandler {
	return &BadgeHandler{log: log, badges: badges}
}

func (h *BadgeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.badges.List())
}
