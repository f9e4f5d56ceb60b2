package handler

import (
	"log/slog"
	"net/http"
	"time"

	"notetree/internal/docroot"
	"notetree/internal/httputil"
)

// RootsHandler serves the configured document roots
type RootsHandler struct {
	registry *docroot.Registry
	logger   *slog.Logger
}

// NewRootsHandler creates a new roots handler
func NewRootsHandler(registry *docroot.Registry, logger *slog.Logger) *RootsHandler {
	return &RootsHandler{registry: registry, logger: logger}
}

// ListRoots lists the configured root keys
// GET /api/roots
func (h *RootsHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"roots": h.registry.Keys(),
	})
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *RootsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
