package handler

import (
	"log/slog"
	"net/http"

	"notetree/internal/docsys"
	"notetree/internal/httputil"
)

// TreeHandler handles tree rendering requests
type TreeHandler struct {
	trees  *docsys.TreeService
	logger *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(trees *docsys.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{trees: trees, logger: logger}
}

// GetTree renders one folder of a root
// GET /api/roots/{key}/tree?folder=...&pullup=true
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	folder := r.URL.Query().Get("folder")
	pullup := r.URL.Query().Get("pullup") == "true"

	nodes, err := h.trees.Render(r.Context(), key, folder, pullup)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"tree": nodes,
	})
}
