package search

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"notetree/internal/domain/models"
)

func newGrepEngine(t *testing.T) *GrepEngine {
	t.Helper()
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not available")
	}
	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("0001_f1.md", "foo bar baz\nsecond line\n")
	write("0002_f2.md", "foo baz\n")
	write("0003_f3.md", "bar baz\n")
	write("0004_d/0001_deep.md", "dated [3/7/2024 9:05 AM] foo\n")
	return NewGrepEngine(root, "grep", "pdfgrep", slog.New(slog.DiscardHandler))
}

func TestGrepMatchAll(t *testing.T) {
	e := newGrepEngine(t)
	hits, err := e.Search(context.Background(), &models.SearchRequest{
		Query: `"foo bar" baz`,
		Mode:  models.SearchModeMatchAll,
		Order: models.OrderNone,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	files := map[string]bool{}
	for _, h := range hits {
		files[h.File] = true
	}
	if len(files) != 1 || !files["0001_f1.md"] {
		t.Errorf("MATCH_ALL hit files = %v, want only 0001_f1.md", files)
	}
}

func TestGrepMatchAny(t *testing.T) {
	e := newGrepEngine(t)
	hits, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "foo",
		Mode:  models.SearchModeMatchAny,
		Order: models.OrderNone,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits, want 3: %v", len(hits), hits)
	}
	for _, h := range hits {
		if h.Line < 1 || h.Content == "" {
			t.Errorf("text hit missing line/content: %+v", h)
		}
	}
}

func TestGrepRequireDate(t *testing.T) {
	e := newGrepEngine(t)
	hits, err := e.Search(context.Background(), &models.SearchRequest{
		Query:       "foo",
		Mode:        models.SearchModeMatchAny,
		RequireDate: true,
		Order:       models.OrderNone,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].File != "0004_d/0001_deep.md" {
		t.Errorf("requireDate hits = %v, want only the timestamped file", hits)
	}
}

func TestGrepZeroMatchesIsSuccess(t *testing.T) {
	e := newGrepEngine(t)
	hits, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "no-such-token-anywhere",
		Mode:  models.SearchModeMatchAny,
		Order: models.OrderNone,
	})
	if err != nil {
		t.Fatalf("zero matches must be success, got %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}
}

func TestGrepScopedToSubfolder(t *testing.T) {
	e := newGrepEngine(t)
	hits, err := e.Search(context.Background(), &models.SearchRequest{
		Query:  "foo",
		Folder: "0004_d",
		Mode:   models.SearchModeMatchAny,
		Order:  models.OrderNone,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].File != "0004_d/0001_deep.md" {
		t.Errorf("scoped hits = %v", hits)
	}
}

func TestParseGrepLines(t *testing.T) {
	hits := parseGrepLines([]string{
		"/tmp/x/0001_a.md:3:hello world",
		"/tmp/x/0001_a.md:10:second: with colon",
		"garbage",
	})
	if len(hits) != 2 {
		t.Fatalf("got %d hits", len(hits))
	}
	if hits[1].Line != 10 || hits[1].Content != "second: with colon" {
		t.Errorf("colon content mangled: %+v", hits[1])
	}
}
