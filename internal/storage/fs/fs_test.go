package fs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"notetree/internal/domain"
	"notetree/internal/storage"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(t.TempDir(), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	content := []byte("# hello\n")
	if err := b.WriteFile(ctx, "0001_a.md", content); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := b.ReadFile(ctx, "0001_a.md")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("ReadFile = %q, want %q", got, content)
	}

	info, err := b.Stat(ctx, "0001_a.md")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.IsDir || info.SizeBytes != int64(len(content)) {
		t.Errorf("Stat = %+v", info)
	}
}

func TestWriteRejectsUnprefixedName(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.WriteFile(ctx, "a.md", nil); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("WriteFile without prefix = %v, want ErrInvalidName", err)
	}
	if err := b.Mkdir(ctx, "folder", false); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("Mkdir without prefix = %v, want ErrInvalidName", err)
	}
}

func TestPathEscapeRejected(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if _, err := b.ReadFile(ctx, "../outside.md"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("ReadFile escape = %v, want ErrAccessDenied", err)
	}
	if err := b.WriteFile(ctx, "0001_d/../../0001_x.md", nil); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("WriteFile escape = %v, want ErrAccessDenied", err)
	}
}

func TestRename(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.WriteFile(ctx, "0001_a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := b.Rename(ctx, "0001_a.md", "0002_a.md"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if ok, _ := b.Exists(ctx, "0001_a.md"); ok {
		t.Error("old name still exists after rename")
	}
	if ok, _ := b.Exists(ctx, "0002_a.md"); !ok {
		t.Error("new name missing after rename")
	}

	// Renaming onto an existing sibling must fail, not overwrite.
	if err := b.WriteFile(ctx, "0003_b.md", []byte("y")); err != nil {
		t.Fatal(err)
	}
	if err := b.Rename(ctx, "0002_a.md", "0003_b.md"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Rename onto existing = %v, want ErrConflict", err)
	}

	if err := b.Rename(ctx, "0009_missing.md", "0010_x.md"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Rename missing source = %v, want ErrNotFound", err)
	}
}

func TestMkdirConflict(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.Mkdir(ctx, "0001_d", false); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := b.Mkdir(ctx, "0001_d", false); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second Mkdir = %v, want ErrConflict", err)
	}
	if err := b.Mkdir(ctx, "0001_d", true); err != nil {
		t.Errorf("recursive Mkdir should be a no-op ensure, got %v", err)
	}
}

func TestRemoveDir(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.Mkdir(ctx, "0001_d", false); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteFile(ctx, "0001_d/0001_a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}

	err := b.RemoveDir(ctx, "0001_d", storage.RemoveDirOptions{})
	if !errors.Is(err, domain.ErrNotEmpty) {
		t.Errorf("non-recursive remove of non-empty dir = %v, want ErrNotEmpty", err)
	}

	if err := b.RemoveDir(ctx, "0001_d", storage.RemoveDirOptions{Recursive: true}); err != nil {
		t.Fatalf("recursive remove: %v", err)
	}
	if ok, _ := b.Exists(ctx, "0001_d"); ok {
		t.Error("dir still exists after recursive remove")
	}

	err = b.RemoveDir(ctx, "0001_d", storage.RemoveDirOptions{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("remove of missing dir = %v, want ErrNotFound", err)
	}
	if err := b.RemoveDir(ctx, "0001_d", storage.RemoveDirOptions{Force: true}); err != nil {
		t.Errorf("forced remove of missing dir = %v, want nil", err)
	}
}

func TestReadDirListsEntries(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	for _, name := range []string{"0002_b.md", "0001_a.md"} {
		if err := b.WriteFile(ctx, name, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	// Entries written outside the backend may lack prefixes; reads must
	// still surface them so the tree builder can heal them.
	if err := os.WriteFile(filepath.Join(b.Root(), "imported.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := b.ReadDir(ctx, "")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(names) != 3 {
		t.Errorf("ReadDir = %v, want 3 entries", names)
	}
}
