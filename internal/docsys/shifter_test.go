package docsys

import (
	"context"
	"log/slog"
	"reflect"
	"testing"

	"notetree/internal/storage/fs"
)

func newTestBackend(t *testing.T) *fs.Backend {
	t.Helper()
	b, err := fs.New(t.TempDir(), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func mustWrite(t *testing.T, b *fs.Backend, logical string) {
	t.Helper()
	if err := b.WriteFile(context.Background(), logical, []byte("x")); err != nil {
		t.Fatalf("write %s: %v", logical, err)
	}
}

func listNames(t *testing.T, b *fs.Backend, folder string) []string {
	t.Helper()
	names, err := b.ReadDir(context.Background(), folder)
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func TestMaxOrdinal(t *testing.T) {
	b := newTestBackend(t)
	s := NewShifter(b, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	if max, err := s.MaxOrdinal(ctx, ""); err != nil || max != 0 {
		t.Errorf("empty dir: max = %d, err = %v", max, err)
	}

	mustWrite(t, b, "0001_a.md")
	mustWrite(t, b, "0007_b.md")
	if max, err := s.MaxOrdinal(ctx, ""); err != nil || max != 7 {
		t.Errorf("max = %d, err = %v", max, err)
	}
}

func TestShiftDown(t *testing.T) {
	b := newTestBackend(t)
	s := NewShifter(b, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	mustWrite(t, b, "0001_a.md")
	mustWrite(t, b, "0002_b.md")
	mustWrite(t, b, "0003_c.md")

	if err := s.ShiftDown(ctx, "", 2, 1, nil); err != nil {
		t.Fatalf("ShiftDown: %v", err)
	}

	want := []string{"0001_a.md", "0003_b.md", "0004_c.md"}
	if got := listNames(t, b, ""); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestShiftDownIgnore(t *testing.T) {
	b := newTestBackend(t)
	s := NewShifter(b, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	mustWrite(t, b, "0002_b.md")
	mustWrite(t, b, "0003_c.md")

	ignore := map[string]bool{"0002_b.md": true}
	if err := s.ShiftDown(ctx, "", 2, 1, ignore); err != nil {
		t.Fatalf("ShiftDown: %v", err)
	}

	want := []string{"0002_b.md", "0004_c.md"}
	if got := listNames(t, b, ""); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestShiftDownZeroSlots(t *testing.T) {
	b := newTestBackend(t)
	s := NewShifter(b, slog.New(slog.DiscardHandler))

	mustWrite(t, b, "0001_a.md")
	if err := s.ShiftDown(context.Background(), "", 1, 0, nil); err != nil {
		t.Fatalf("ShiftDown: %v", err)
	}
	want := []string{"0001_a.md"}
	if got := listNames(t, b, ""); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestSwapAdjacent(t *testing.T) {
	b := newTestBackend(t)
	s := NewShifter(b, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	mustWrite(t, b, "0001_a.md")
	mustWrite(t, b, "0002_b.md")

	newA, newB, err := s.SwapAdjacent(ctx, "", "0001_a.md", "0002_b.md")
	if err != nil {
		t.Fatalf("SwapAdjacent: %v", err)
	}
	if newA != "0002_a.md" || newB != "0001_b.md" {
		t.Errorf("swapped to %q, %q", newA, newB)
	}

	want := []string{"0001_b.md", "0002_a.md"}
	if got := listNames(t, b, ""); !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}

	// Swapping back restores the original layout.
	if _, _, err := s.SwapAdjacent(ctx, "", newA, newB); err != nil {
		t.Fatalf("swap back: %v", err)
	}
	want = []string{"0001_a.md", "0002_b.md"}
	if got := listNames(t, b, ""); !reflect.DeepEqual(got, want) {
		t.Errorf("names after swap back = %v, want %v", got, want)
	}
}
