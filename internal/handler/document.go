package handler

import (
	"log/slog"
	"net/http"

	"notetree/internal/docsys"
	"notetree/internal/httputil"
)

// DocumentHandler handles file HTTP requests
type DocumentHandler struct {
	docs   *docsys.DocumentService
	logger *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docs *docsys.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, logger: logger}
}

// CreateFile creates a new file
// POST /api/roots/{key}/files
// Returns 201 with the stored filename, 409 with the existing name on duplicate
func (h *DocumentHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req docsys.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RootKey = r.PathValue("key")

	name, err := h.docs.CreateFile(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"fileName": name,
	})
}

// SaveFile writes file content, renaming first when requested
// PUT /api/roots/{key}/files
func (h *DocumentHandler) SaveFile(w http.ResponseWriter, r *http.Request) {
	var req docsys.SaveFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RootKey = r.PathValue("key")

	name, err := h.docs.SaveFile(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"fileName": name,
	})
}

// ReadFile returns one file's content and metadata
// GET /api/roots/{key}/files?path=...
func (h *DocumentHandler) ReadFile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	logical := r.URL.Query().Get("path")

	fc, err := h.docs.ReadFile(r.Context(), key, logical)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, fc)
}

// Delete removes files and folders, reporting per-item results
// POST /api/roots/{key}/delete
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req docsys.DeleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RootKey = r.PathValue("key")

	result, err := h.docs.Delete(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
