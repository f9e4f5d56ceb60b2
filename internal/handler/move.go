package handler

import (
	"log/slog"
	"net/http"

	"notetree/internal/docsys"
	"notetree/internal/httputil"
)

// MoveHandler handles reorder and cross-folder move requests
type MoveHandler struct {
	moves  *docsys.MoveService
	logger *slog.Logger
}

// NewMoveHandler creates a new move handler
func NewMoveHandler(moves *docsys.MoveService, logger *slog.Logger) *MoveHandler {
	return &MoveHandler{moves: moves, logger: logger}
}

// Move swaps an entry with its neighbor above or below
// POST /api/roots/{key}/move
func (h *MoveHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req docsys.MoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RootKey = r.PathValue("key")

	result, err := h.moves.Move(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Paste moves entries into a target folder with per-item results
// POST /api/roots/{key}/paste
func (h *MoveHandler) Paste(w http.ResponseWriter, r *http.Request) {
	var req docsys.PasteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RootKey = r.PathValue("key")

	result, err := h.moves.Paste(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
