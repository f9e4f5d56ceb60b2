package docsys

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"

	"github.com/google/uuid"

	"notetree/internal/ordinal"
	"notetree/internal/storage"
)

// Shifter renumbers siblings to open or close ordinal space. All renames go
// through the storage backend, so atomicity follows the backend's story:
// a surrounding transaction on Postgres, individual renames on disk.
type Shifter struct {
	backend storage.Backend
	logger  *slog.Logger
}

// NewShifter creates a shifter over the given backend.
func NewShifter(backend storage.Backend, logger *slog.Logger) *Shifter {
	return &Shifter{backend: backend, logger: logger}
}

// sibling pairs a stored name with its parsed ordinal.
type sibling struct {
	name string
	ord  int
}

// ordered returns the parseable entries of parent sorted by ordinal
// ascending. Entries without a prefix are skipped; the tree builder owns
// allocating their ordinals.
func (s *Shifter) ordered(ctx context.Context, parent string) ([]sibling, error) {
	names, err := s.backend.ReadDir(ctx, parent)
	if err != nil {
		return nil, err
	}
	sibs := make([]sibling, 0, len(names))
	for _, name := range names {
		ord, _, err := ordinal.Parse(name)
		if err != nil {
			continue
		}
		sibs = append(sibs, sibling{name: name, ord: ord})
	}
	sort.Slice(sibs, func(i, j int) bool { return sibs[i].ord < sibs[j].ord })
	return sibs, nil
}

// MaxOrdinal returns the highest ordinal present under parent, or 0 if the
// directory holds no ordinal-prefixed entries.
func (s *Shifter) MaxOrdinal(ctx context.Context, parent string) (int, error) {
	sibs, err := s.ordered(ctx, parent)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, sib := range sibs {
		if sib.ord > max {
			max = sib.ord
		}
	}
	return max, nil
}

// ShiftDown increments by slots the ordinal of every sibling whose ordinal
// is >= fromOrdinal and whose name is not in ignore. Renames run highest
// ordinal first so no intermediate step collides with a sibling's current
// name. The caller inserts the new entry only after the shift completes.
func (s *Shifter) ShiftDown(ctx context.Context, parent string, fromOrdinal, slots int, ignore map[string]bool) error {
	if slots <= 0 {
		return nil
	}
	sibs, err := s.ordered(ctx, parent)
	if err != nil {
		return err
	}
	for i := len(sibs) - 1; i >= 0; i-- {
		sib := sibs[i]
		if sib.ord < fromOrdinal || ignore[sib.name] {
			continue
		}
		_, rest, err := ordinal.Parse(sib.name)
		if err != nil {
			continue
		}
		newName := ordinal.Format(sib.ord+slots, rest)
		oldPath := path.Join(parent, sib.name)
		newPath := path.Join(parent, newName)
		if err := s.backend.Rename(ctx, oldPath, newPath); err != nil {
			return fmt.Errorf("shift %s -> %s: %w", sib.name, newName, err)
		}
		s.logger.Debug("sibling shifted",
			"parent", parent,
			"from", sib.name,
			"to", newName,
		)
	}
	return nil
}

// SwapAdjacent exchanges the ordinal prefixes of two siblings through a
// uniquely named temporary entry, so no intermediate rename can collide
// with another sibling's name.
func (s *Shifter) SwapAdjacent(ctx context.Context, parent, nameA, nameB string) (string, string, error) {
	ordA, restA, err := ordinal.Parse(nameA)
	if err != nil {
		return "", "", err
	}
	ordB, restB, err := ordinal.Parse(nameB)
	if err != nil {
		return "", "", err
	}

	newA := ordinal.Format(ordB, restA)
	newB := ordinal.Format(ordA, restB)
	tmp := ordinal.Format(ordA, "tmp-"+uuid.NewString()+"-"+restA)

	if err := s.backend.Rename(ctx, path.Join(parent, nameA), path.Join(parent, tmp)); err != nil {
		return "", "", fmt.Errorf("swap step 1: %w", err)
	}
	if err := s.backend.Rename(ctx, path.Join(parent, nameB), path.Join(parent, newB)); err != nil {
		return "", "", fmt.Errorf("swap step 2: %w", err)
	}
	if err := s.backend.Rename(ctx, path.Join(parent, tmp), path.Join(parent, newA)); err != nil {
		return "", "", fmt.Errorf("swap step 3: %w", err)
	}

	s.logger.Debug("siblings swapped",
		"parent", parent,
		"a", nameA,
		"b", nameB,
	)
	return newA, newB, nil
}
