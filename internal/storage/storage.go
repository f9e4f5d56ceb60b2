// Package storage defines the backend contract shared by the filesystem and
// Postgres document stores. All paths are logical paths relative to the
// backend's document root, using forward slashes; "" means the root itself.
//
// Callers must not assume ReadDir ordering beyond "stable"; anything that
// cares about sibling order re-sorts through the ordinal codec.
package storage

import (
	"context"
	"time"
)

// FileInfo describes one stored node.
type FileInfo struct {
	IsDir      bool
	SizeBytes  int64
	CreateTime time.Time
	ModifyTime time.Time
}

// RemoveDirOptions controls RemoveDir behavior. Without Recursive, removing
// a non-empty directory fails with ErrNotEmpty. Force suppresses the
// not-found error.
type RemoveDirOptions struct {
	Recursive bool
	Force     bool
}

// Backend is the kind-agnostic primitive set consumed by the tree builder,
// the ordinal shifter and the document services.
//
// Implementations must reject any path that escapes their root, and must
// reject new names written without a valid ordinal prefix (reading existing
// names that lack one is legal; the tree builder allocates prefixes).
type Backend interface {
	Exists(ctx context.Context, path string) (bool, error)
	Stat(ctx context.Context, path string) (*FileInfo, error)
	ReadDir(ctx context.Context, path string) ([]string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Mkdir(ctx context.Context, path string, recursive bool) error
	Rename(ctx context.Context, oldPath, newPath string) error
	RemoveFile(ctx context.Context, path string) error
	RemoveDir(ctx context.Context, path string, opts RemoveDirOptions) error
}

// TxRunner scopes a multi-step mutation to one atomic unit where the
// backend supports it. The Postgres backend runs fn inside a transaction so
// a shift-then-insert sequence is all-or-nothing to concurrent readers; the
// filesystem backend runs fn directly and offers no cross-call atomicity.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTxRunner is a TxRunner for backends without transactions.
type NopTxRunner struct{}

func (NopTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
