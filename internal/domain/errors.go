package domain

import (
	"errors"
	"net/http"
)

// HTTPError is implemented by errors that know their HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors for the storage and tree layers - use with errors.Is()
var (
	// ErrNotFound indicates a path, file or folder that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the target name already exists.
	ErrConflict = errors.New("already exists")

	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidName indicates a filename without a usable ordinal prefix
	// in a position where one is required.
	ErrInvalidName = errors.New("invalid name")

	// ErrAccessDenied indicates a path that escapes its document root.
	// Raised before any backend I/O happens.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotEmpty indicates a non-recursive remove of a non-empty folder.
	ErrNotEmpty = errors.New("directory not empty")
)

// ConflictError carries the name of the entry already occupying the target,
// so callers can report which sibling blocked the operation.
type ConflictError struct {
	Message  string
	Existing string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
