package handlers

import (
	"context"
	"net/http"
	"time"
)

// ComponentCheck probes one backing service.
type ComponentCheck func(ctx context.Context) error

// HealthHandler reports liveness and per-component status.
type HealthHandler struct {
	checks map[string]ComponentCheck
}

// NewHealthHandler creates a health handler. Nil checks are skipped, so a
// deployment without redis simply omits that component.
func NewHealthHandler(checks map[string]ComponentCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.checks))
	status := "ok"
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			components[name] = "unavailable"
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"components": components,
	})
}
