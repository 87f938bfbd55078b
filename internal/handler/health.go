// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
)

// ReadinessCheck reports whether a backing dependency is usable.
type ReadinessCheck func() error

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	ready ReadinessCheck
}

// NewHealthHandler creates a health handler. A nil check means the
// service has no external dependency to wait on.
func NewHealthHandler(ready ReadinessCheck) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
