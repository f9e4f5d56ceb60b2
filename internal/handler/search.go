package handler

import (
	"log/slog"
	"net/http"

	"notetree/internal/docsys"
	"notetree/internal/domain/models"
	"notetree/internal/httputil"
)

// SearchHandler handles content search requests
type SearchHandler struct {
	searches *docsys.SearchService
	logger   *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searches *docsys.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{searches: searches, logger: logger}
}

// Search runs a text-only query against a root
// POST /api/roots/{key}/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, false)
}

// SearchBinary runs the same query including PDF content
// POST /api/roots/{key}/search/binary
func (h *SearchHandler) SearchBinary(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, true)
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request, includePDF bool) {
	var req models.SearchRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.IncludePDF = includePDF

	hits, err := h.searches.Search(r.Context(), r.PathValue("key"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"hits":  hits,
		"count": len(hits),
	})
}
