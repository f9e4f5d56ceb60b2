// Package fs implements the storage backend over a plain directory tree.
//
// Each primitive maps directly to the corresponding OS call. There is no
// cross-operation atomicity beyond the rename syscall itself: two requests
// racing an ordinal shift on the same parent directory can interleave.
// This is a known, accepted limitation of the filesystem backend.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"syscall"

	"notetree/internal/domain"
	"notetree/internal/ordinal"
	"notetree/internal/pathutil"
	"notetree/internal/storage"
)

// Backend stores nodes under a single physical root directory.
type Backend struct {
	root   string
	logger *slog.Logger
}

// New creates a filesystem backend rooted at root. The root directory is
// created if missing.
func New(root string, logger *slog.Logger) (*Backend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create root %s: %w", root, err)
	}
	return &Backend{root: root, logger: logger}, nil
}

// Root returns the physical root directory.
func (b *Backend) Root() string { return b.root }

// resolve guards and joins a logical path onto the physical root.
func (b *Backend) resolve(logical string) (string, error) {
	return pathutil.SecureJoin(b.root, logical)
}

// checkWriteName rejects new names written without a valid ordinal prefix.
func checkWriteName(logical string) error {
	name := path.Base(logical)
	if _, _, err := ordinal.Parse(name); err != nil {
		return err
	}
	return nil
}

func (b *Backend) Exists(ctx context.Context, logical string) (bool, error) {
	p, err := b.resolve(logical)
	if err != nil {
		return false, err
	}
	if _, err := os.Lstat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", logical, err)
	}
	return true, nil
}

func (b *Backend) Stat(ctx context.Context, logical string) (*storage.FileInfo, error) {
	p, err := b.resolve(logical)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", logical, err)
	}
	info := &storage.FileInfo{
		IsDir:      fi.IsDir(),
		SizeBytes:  fi.Size(),
		ModifyTime: fi.ModTime(),
		CreateTime: fi.ModTime(),
	}
	// Ctim is the closest thing POSIX gives to a creation time.
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		info.CreateTime = ctime(st)
	}
	return info, nil
}

func (b *Backend) ReadDir(ctx context.Context, logical string) ([]string, error) {
	p, err := b.resolve(logical)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("readdir %s: %w", logical, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (b *Backend) ReadFile(ctx context.Context, logical string) ([]byte, error) {
	p, err := b.resolve(logical)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", logical, err)
	}
	return data, nil
}

func (b *Backend) WriteFile(ctx context.Context, logical string, data []byte) error {
	if err := checkWriteName(logical); err != nil {
		return err
	}
	p, err := b.resolve(logical)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", logical, err)
	}
	return nil
}

func (b *Backend) Mkdir(ctx context.Context, logical string, recursive bool) error {
	if err := checkWriteName(logical); err != nil {
		return err
	}
	p, err := b.resolve(logical)
	if err != nil {
		return err
	}
	if recursive {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("mkdir -p %s: %w", logical, err)
		}
		return nil
	}
	if err := os.Mkdir(p, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", logical, domain.ErrConflict)
		}
		return fmt.Errorf("mkdir %s: %w", logical, err)
	}
	return nil
}

func (b *Backend) Rename(ctx context.Context, oldLogical, newLogical string) error {
	if err := checkWriteName(newLogical); err != nil {
		return err
	}
	oldP, err := b.resolve(oldLogical)
	if err != nil {
		return err
	}
	newP, err := b.resolve(newLogical)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(newP); err == nil {
		return fmt.Errorf("%s: %w", newLogical, domain.ErrConflict)
	}
	if err := os.Rename(oldP, newP); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", oldLogical, domain.ErrNotFound)
		}
		return fmt.Errorf("rename %s -> %s: %w", oldLogical, newLogical, err)
	}
	return nil
}

func (b *Backend) RemoveFile(ctx context.Context, logical string) error {
	p, err := b.resolve(logical)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
		}
		return fmt.Errorf("remove %s: %w", logical, err)
	}
	return nil
}

func (b *Backend) RemoveDir(ctx context.Context, logical string, opts storage.RemoveDirOptions) error {
	p, err := b.resolve(logical)
	if err != nil {
		return err
	}
	if logical == "" {
		return fmt.Errorf("%w: cannot remove the document root", domain.ErrAccessDenied)
	}
	if opts.Recursive {
		if _, err := os.Lstat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if opts.Force {
					return nil
				}
				return fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
			}
			return fmt.Errorf("stat %s: %w", logical, err)
		}
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove -r %s: %w", logical, err)
		}
		return nil
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if opts.Force {
				return nil
			}
			return fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
		}
		var perr *os.PathError
		if errors.As(err, &perr) && perr.Err == syscall.ENOTEMPTY {
			return fmt.Errorf("%s: %w", logical, domain.ErrNotEmpty)
		}
		return fmt.Errorf("rmdir %s: %w", logical, err)
	}
	return nil
}

var _ storage.Backend = (*Backend)(nil)
