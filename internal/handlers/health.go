package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pinger is anything with a liveness check: the session store and the
// archive both qualify.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CatalogSizer reports how many scenarios are loaded.
type CatalogSizer interface {
	Len() int
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
	Scenarios  int               `json:"scenarios"`
}

type HealthHandler struct {
	components map[string]Pinger
	catalog    CatalogSizer
	logger     *slog.Logger
}

// NewHealthHandler checks every named component on each request. A nil
// component is skipped.
func NewHealthHandler(components map[string]Pinger, catalog CatalogSizer, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		components: components,
		catalog:    catalog,
		logger:     logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.components)+1)
	overallStatus := "healthy"

	// Failures are recorded, not returned, so every component is reported.
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for name, p := range h.components {
		if p == nil {
			continue
		}
		g.Go(func() error {
			status := "healthy"
			if err := p.Ping(ctx); err != nil {
				h.logger.Warn("Health check failed", "component", name, "error", err)
				status = "unhealthy"
			}
			mu.Lock()
			components[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, status := range components {
		if status != "healthy" {
			overallStatus = "degraded"
		}
	}

	scenarios := 0
	if h.catalog != nil {
		scenarios = h.catalog.Len()
	}
	if scenarios == 0 {
		components["catalog"] = "empty"
		overallStatus = "degraded"
	} else {
		components["catalog"] = "healthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "hotspot-trainer",
		Components: components,
		Scenarios:  scenarios,
	})
}
