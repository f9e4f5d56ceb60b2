package docsys

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"notetree/internal/domain/models"
	"notetree/internal/storage/fs"
)

// writeRaw drops a file straight onto disk, bypassing the backend's naming
// rules, the way external tools put content into a root.
func writeRaw(t *testing.T, b *fs.Backend, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(b.Root(), name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newBuilder(b *fs.Backend) *TreeBuilder {
	l := slog.New(slog.DiscardHandler)
	return NewTreeBuilder(b, NewShifter(b, l), l)
}

func nodeNames(nodes []*models.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestRenderOrdersByOrdinal(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	mustWrite(t, b, "0002_b.md")
	mustWrite(t, b, "0001_a.md")

	nodes, err := newBuilder(b).Render(ctx, "", false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := nodeNames(nodes)
	if len(got) != 2 || got[0] != "0001_a.md" || got[1] != "0002_b.md" {
		t.Errorf("names = %v", got)
	}
	if nodes[0].Ordinal != 1 || nodes[0].LogicalName != "a.md" {
		t.Errorf("node = %+v", nodes[0])
	}
}

func TestRenderSkipsHiddenEntries(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	mustWrite(t, b, "0001_a.md")
	if err := b.Mkdir(ctx, "0002_sub", false); err != nil {
		t.Fatal(err)
	}
	// Hidden entries are written outside the backend's naming rules.
	writeRaw(t, b, ".hidden")
	writeRaw(t, b, "_draft.md")

	nodes, err := newBuilder(b).Render(ctx, "", false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := nodeNames(nodes)
	if len(got) != 2 || got[0] != "0001_a.md" || got[1] != "0002_sub" {
		t.Errorf("names = %v", got)
	}
}

func TestRenderHealsUnprefixedEntries(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	mustWrite(t, b, "0002_a.md")
	writeRaw(t, b, "notes.md")

	nodes, err := newBuilder(b).Render(ctx, "", false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := nodeNames(nodes)
	if len(got) != 2 || got[0] != "0002_a.md" || got[1] != "0003_notes.md" {
		t.Errorf("names = %v", got)
	}

	// The rename is persisted, not render-local.
	names := listNames(t, b, "")
	if len(names) != 2 || names[1] != "0003_notes.md" {
		t.Errorf("stored names = %v", names)
	}
}

func TestRenderNormalizesLegacyWidths(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	writeRaw(t, b, "000012_a.md")

	nodes, err := newBuilder(b).Render(ctx, "", false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "0012_a.md" {
		t.Errorf("nodes = %v", nodeNames(nodes))
	}
}

func TestRenderClassifiesKinds(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if err := b.WriteFile(ctx, "0001_note.md", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteFile(ctx, "0002_pic.png", []byte{0x89, 0x50}); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteFile(ctx, "0003_blob.bin", []byte{0x00, 0x01}); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteFile(ctx, "0004_bad.md", []byte{0xff, 0xfe, 0x00}); err != nil {
		t.Fatal(err)
	}

	nodes, err := newBuilder(b).Render(ctx, "", false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("nodes = %v", nodeNames(nodes))
	}
	if nodes[0].Kind != models.KindText || nodes[0].Content != "hello" {
		t.Errorf("text node = %+v", nodes[0])
	}
	if nodes[1].Kind != models.KindImage || nodes[1].Content != "0002_pic.png" {
		t.Errorf("image node = %+v", nodes[1])
	}
	if nodes[2].Kind != models.KindBinary {
		t.Errorf("binary node = %+v", nodes[2])
	}
	// A text extension holding invalid UTF-8 falls back to binary.
	if nodes[3].Kind != models.KindBinary || nodes[3].Content != "" {
		t.Errorf("invalid utf8 node = %+v", nodes[3])
	}
}

func TestRenderPullup(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	mustWrite(t, b, "0001_a.md")
	if err := b.Mkdir(ctx, "0002_notes_", false); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, b, "0002_notes_/0001_x.md")
	mustWrite(t, b, "0002_notes_/0002_y.md")
	mustWrite(t, b, "0003_z.md")

	// Without pullup the folder node stays in place.
	nodes, err := newBuilder(b).Render(ctx, "", false)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := nodeNames(nodes)
	if len(got) != 3 || got[1] != "0002_notes_" {
		t.Errorf("flat names = %v", got)
	}
	if !nodes[1].HasBackendChildren {
		t.Error("folder should report backend children")
	}

	// With pullup the folder's children occupy its slot.
	nodes, err = newBuilder(b).Render(ctx, "", true)
	if err != nil {
		t.Fatalf("Render pullup: %v", err)
	}
	got = nodeNames(nodes)
	want := []string{"0001_a.md", "0001_x.md", "0002_y.md", "0003_z.md"}
	if len(got) != len(want) {
		t.Fatalf("pullup names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pullup names = %v, want %v", got, want)
			break
		}
	}
}

func TestRenderNestedPullup(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if err := b.Mkdir(ctx, "0001_outer_", false); err != nil {
		t.Fatal(err)
	}
	if err := b.Mkdir(ctx, "0001_outer_/0001_inner_", false); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, b, "0001_outer_/0001_inner_/0001_deep.md")
	mustWrite(t, b, "0001_outer_/0002_mid.md")

	nodes, err := newBuilder(b).Render(ctx, "", true)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := nodeNames(nodes)
	if len(got) != 2 || got[0] != "0001_deep.md" || got[1] != "0002_mid.md" {
		t.Errorf("names = %v", got)
	}
}

func TestRenderNonPullupFolderKeepsChildrenFolded(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if err := b.Mkdir(ctx, "0001_sub", false); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, b, "0001_sub/0001_x.md")

	nodes, err := newBuilder(b).Render(ctx, "", true)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "0001_sub" {
		t.Fatalf("names = %v", nodeNames(nodes))
	}
	if len(nodes[0].Children) != 0 {
		t.Errorf("regular folder must not expand children, got %v", nodeNames(nodes[0].Children))
	}
}
