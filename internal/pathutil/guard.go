// Package pathutil guards every path the store constructs against escaping
// its document root. Each component calls into it before touching a
// backend, including the temporary paths used while shifting ordinals.
package pathutil

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"notetree/internal/domain"
)

// CheckWithin resolves candidate and root to canonical absolute form and
// fails unless candidate is the root or a descendant of it.
func CheckWithin(root, candidate string) error {
	absRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return fmt.Errorf("%w: resolve root: %v", domain.ErrAccessDenied, err)
	}
	absCand, err := filepath.Abs(filepath.Clean(candidate))
	if err != nil {
		return fmt.Errorf("%w: resolve path: %v", domain.ErrAccessDenied, err)
	}
	if absCand == absRoot {
		return nil
	}
	if !strings.HasPrefix(absCand, absRoot+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q escapes root", domain.ErrAccessDenied, candidate)
	}
	return nil
}

// SecureJoin joins a logical path onto root and verifies the result stays
// inside root. The logical path uses forward slashes; "" means the root.
func SecureJoin(root, logical string) (string, error) {
	if err := CleanLogical(logical); err != nil {
		return "", err
	}
	joined := filepath.Join(root, filepath.FromSlash(logical))
	if err := CheckWithin(root, joined); err != nil {
		return "", err
	}
	return joined, nil
}

// CleanLogical validates a root-relative logical path. Absolute paths,
// parent references and empty segments are rejected.
func CleanLogical(logical string) error {
	if logical == "" {
		return nil
	}
	if strings.HasPrefix(logical, "/") {
		return fmt.Errorf("%w: absolute path %q", domain.ErrAccessDenied, logical)
	}
	cleaned := path.Clean(logical)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: %q escapes root", domain.ErrAccessDenied, logical)
	}
	for _, seg := range strings.Split(logical, "/") {
		if strings.TrimSpace(seg) == "" {
			return fmt.Errorf("%w: empty path segment in %q", domain.ErrAccessDenied, logical)
		}
	}
	return nil
}

// ValidateEntryName checks a single file or folder name (one path segment).
func ValidateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: name %q cannot contain slashes", domain.ErrValidation, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: invalid name %q", domain.ErrValidation, name)
	}
	return nil
}
