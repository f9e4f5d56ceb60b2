package docsys

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"notetree/internal/domain"
	"notetree/internal/domain/models"
	"notetree/internal/ordinal"
	"notetree/internal/pathutil"
	"notetree/internal/storage"
)

var textExtensions = map[string]bool{
	".md": true, ".txt": true, ".json": true, ".yaml": true, ".yml": true,
	".csv": true, ".log": true, ".html": true, ".css": true, ".js": true,
	".ts": true, ".go": true, ".sh": true, ".xml": true,
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".bmp": true,
}

// TreeBuilder renders a directory into an ordered node list.
//
// Rendering is not purely read-only: entries found without an ordinal
// prefix get one allocated and persisted immediately, and legacy prefixes
// wider than the canonical padding are renamed to canonical form. This
// self-healing keeps imported or hand-placed content sortable.
type TreeBuilder struct {
	backend storage.Backend
	shifter *Shifter
	logger  *slog.Logger
}

// NewTreeBuilder creates a tree builder over the given backend.
func NewTreeBuilder(backend storage.Backend, shifter *Shifter, logger *slog.Logger) *TreeBuilder {
	return &TreeBuilder{backend: backend, shifter: shifter, logger: logger}
}

// Render lists folder and returns its nodes sorted by ordinal. With pullup
// enabled, folders whose logical name ends in "_" are suppressed and their
// (recursively rendered) children spliced in at the folder's position.
// Pullup never changes what is stored; it is a rendering-time transform.
func (t *TreeBuilder) Render(ctx context.Context, folder string, pullup bool) ([]*models.Node, error) {
	if err := pathutil.CleanLogical(folder); err != nil {
		return nil, err
	}
	info, err := t.backend.Stat(ctx, folder)
	if err != nil {
		return nil, err
	}
	if !info.IsDir {
		return nil, fmt.Errorf("%s is not a folder: %w", folder, domain.ErrNotFound)
	}

	names, err := t.backend.ReadDir(ctx, folder)
	if err != nil {
		return nil, err
	}

	visible := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		visible = append(visible, name)
	}

	healed, err := t.heal(ctx, folder, visible)
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.Node, 0, len(healed))
	for _, name := range healed {
		node, err := t.buildNode(ctx, folder, name, pullup)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	if pullup {
		nodes = splicePullups(nodes)
	}
	return nodes, nil
}

// heal allocates ordinals for unprefixed entries and normalizes legacy
// prefix widths, persisting each fix as a rename. Returns the final names.
func (t *TreeBuilder) heal(ctx context.Context, folder string, names []string) ([]string, error) {
	next := 0
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !ordinal.HasPrefix(name) {
			if next == 0 {
				max, err := t.shifter.MaxOrdinal(ctx, folder)
				if err != nil {
					return nil, err
				}
				next = max + 1
			}
			fixed := ordinal.Format(next, name)
			next++
			if err := t.backend.Rename(ctx, path.Join(folder, name), path.Join(folder, fixed)); err != nil {
				return nil, fmt.Errorf("allocate ordinal for %s: %w", name, err)
			}
			t.logger.Info("ordinal allocated",
				"folder", folder,
				"name", name,
				"assigned", fixed,
			)
			out = append(out, fixed)
			continue
		}

		fixed, changed, err := ordinal.Normalize(name)
		if err != nil {
			return nil, err
		}
		if changed {
			if err := t.backend.Rename(ctx, path.Join(folder, name), path.Join(folder, fixed)); err != nil {
				return nil, fmt.Errorf("normalize %s: %w", name, err)
			}
			t.logger.Info("ordinal width normalized",
				"folder", folder,
				"from", name,
				"to", fixed,
			)
		}
		out = append(out, fixed)
	}
	return out, nil
}

func (t *TreeBuilder) buildNode(ctx context.Context, folder, name string, pullup bool) (*models.Node, error) {
	full := path.Join(folder, name)
	info, err := t.backend.Stat(ctx, full)
	if err != nil {
		return nil, err
	}

	ord, logical, err := ordinal.Parse(name)
	if err != nil {
		return nil, err
	}

	node := &models.Node{
		Name:        name,
		LogicalName: logical,
		Ordinal:     ord,
		CreateTime:  info.CreateTime,
		ModifyTime:  info.ModifyTime,
	}

	if info.IsDir {
		node.Kind = models.KindFolder
		children, err := t.backend.ReadDir(ctx, full)
		if err != nil {
			return nil, err
		}
		node.HasBackendChildren = len(children) > 0
		if pullup && strings.HasSuffix(logical, "_") {
			sub, err := t.Render(ctx, full, true)
			if err != nil {
				return nil, err
			}
			node.Children = sub
		}
		return node, nil
	}

	ext := strings.ToLower(path.Ext(logical))
	switch {
	case imageExtensions[ext]:
		node.Kind = models.KindImage
		node.Content = full
	case textExtensions[ext]:
		node.Kind = models.KindText
		data, err := t.backend.ReadFile(ctx, full)
		if err != nil {
			return nil, err
		}
		if utf8.Valid(data) {
			node.Content = string(data)
		} else {
			node.Kind = models.KindBinary
			node.Content = ""
		}
	default:
		node.Kind = models.KindBinary
	}
	return node, nil
}

// splicePullups replaces every pullup folder node by its rendered children,
// which are already recursively flattened. Flattening is order-preserving:
// children occupy the folder's slot in the parent listing.
func splicePullups(nodes []*models.Node) []*models.Node {
	out := make([]*models.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == models.KindFolder && strings.HasSuffix(n.LogicalName, "_") {
			out = append(out, n.Children...)
			continue
		}
		out = append(out, n)
	}
	return out
}
