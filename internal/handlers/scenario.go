package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
)

// ScenarioHandler serves the read-only scenario catalog.
type ScenarioHandler struct {
	log     *slog.Logger
	catalog *scenario.Catalog
	tr      scenario.Translator
}

func NewScenarioHandler(log *slog.Logger, catalog *scenario.Catalog, tr scenario.Translator) *ScenarioHandler {
	return &ScenarioHandler{
		log:     log,
		catalog: catalog,
		tr:      tr,
	}
}

func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	default:
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ScenarioHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/scenarios"), "/")
	if id == "" {
		tag := scenario.NegotiateLanguage(r.Header.Get("Accept-Language"))
		writeJSON(w, h.log, http.StatusOK, localizedSummaries(h.catalog.List(), h.tr, tag))
		return
	}

	if strings.Contains(id, "/") || strings.Contains(id, "..") {
		writeError(w, h.log, http.StatusBadRequest, "Invalid scenario ID")
		return
	}

	sc, ok := h.catalog.Lookup(id)
	if !ok {
		writeError(w, h.log, http.StatusNotFound, "Scenario not found")
		return
	}
	writeJSON(w, h.log, http.StatusOK, sc)
}
