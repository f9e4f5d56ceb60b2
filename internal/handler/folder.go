package handler

import (
	"log/slog"
	"net/http"

	"notetree/internal/docsys"
	"notetree/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folders *docsys.FolderService
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folders *docsys.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, logger: logger}
}

// CreateFolder creates a new folder
// POST /api/roots/{key}/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req docsys.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RootKey = r.PathValue("key")

	name, err := h.folders.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"folderName": name,
	})
}

// RenameFolder renames a folder in place
// POST /api/roots/{key}/folders/rename
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req docsys.RenameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RootKey = r.PathValue("key")

	name, err := h.folders.RenameFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"folderName": name,
	})
}
