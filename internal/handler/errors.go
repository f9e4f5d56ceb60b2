// Package handler exposes the document store over HTTP. Handlers stay thin:
// they parse the request, call one service method and translate the error.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"notetree/internal/domain"
	"notetree/internal/httputil"
)

// handleError maps domain errors to HTTP status codes
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflict.Message,
			map[string]interface{}{"existing": conflict.Existing})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidName):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNotEmpty):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		// Rejected before any I/O; the response never echoes the path.
		httputil.RespondError(w, http.StatusBadRequest, "invalid path")
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
