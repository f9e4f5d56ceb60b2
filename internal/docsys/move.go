package docsys

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"notetree/internal/docroot"
	"notetree/internal/domain"
	"notetree/internal/domain/models"
	"notetree/internal/ordinal"
	"notetree/internal/pathutil"
)

// MoveService reorders siblings and moves entries between folders.
type MoveService struct {
	roots  rootResolver
	logger *slog.Logger
}

// NewMoveService creates a new move service.
func NewMoveService(roots rootResolver, logger *slog.Logger) *MoveService {
	return &MoveService{roots: roots, logger: logger}
}

// MoveRequest swaps FileName with its neighbor above (up) or below (down).
type MoveRequest struct {
	RootKey    string `json:"-"`
	Direction  string `json:"direction"`
	FileName   string `json:"fileName"`
	TreeFolder string `json:"treeFolder"`
}

func (r *MoveRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Direction, validation.Required, validation.In("up", "down")),
		validation.Field(&r.FileName,
			validation.Required,
			validation.Match(entryNameRe).Error("file name cannot contain slashes"),
		),
	)
}

// MoveResult reports the two names after an adjacent swap.
type MoveResult struct {
	Moved    string `json:"moved"`
	Neighbor string `json:"neighbor"`
}

// Move exchanges the ordinal prefixes of FileName and its adjacent sibling.
// Moving the top entry up (or the bottom one down) fails with a validation
// error.
func (s *MoveService) Move(ctx context.Context, req *MoveRequest) (*MoveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	root, err := s.roots.Resolve(req.RootKey)
	if err != nil {
		return nil, err
	}
	if err := pathutil.CleanLogical(req.TreeFolder); err != nil {
		return nil, err
	}

	var result *MoveResult
	err = root.Tx.RunInTx(ctx, func(ctx context.Context) error {
		shifter := NewShifter(root.Backend, s.logger)
		sibs, err := shifter.ordered(ctx, req.TreeFolder)
		if err != nil {
			return err
		}

		idx := -1
		for i, sib := range sibs {
			if sib.name == req.FileName {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("%s: %w", req.FileName, domain.ErrNotFound)
		}

		var neighbor int
		if req.Direction == "up" {
			neighbor = idx - 1
			if neighbor < 0 {
				return fmt.Errorf("%w: %s is already at the top", domain.ErrValidation, req.FileName)
			}
		} else {
			neighbor = idx + 1
			if neighbor >= len(sibs) {
				return fmt.Errorf("%w: %s is already at the bottom", domain.ErrValidation, req.FileName)
			}
		}

		moved, other, err := shifter.SwapAdjacent(ctx, req.TreeFolder, req.FileName, sibs[neighbor].name)
		if err != nil {
			return err
		}
		result = &MoveResult{Moved: moved, Neighbor: other}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("entry moved",
		"root", req.RootKey,
		"folder", req.TreeFolder,
		"name", req.FileName,
		"direction", req.Direction,
	)
	return result, nil
}

// PasteItem names one entry to move: Name inside SourceFolder.
type PasteItem struct {
	Name         string `json:"name"`
	SourceFolder string `json:"sourceFolder"`
}

// PasteRequest moves items into TargetFolder. With TargetOrdinal the items
// are inserted at that position (shifting successors); otherwise they are
// appended after the current maximum ordinal.
type PasteRequest struct {
	RootKey       string      `json:"-"`
	TargetFolder  string      `json:"targetFolder"`
	PasteItems    []PasteItem `json:"pasteItems"`
	TargetOrdinal *int        `json:"targetOrdinal,omitempty"`
}

func (r *PasteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PasteItems, validation.Required),
	)
}

// Paste moves every item independently with partial-failure semantics.
func (s *MoveService) Paste(ctx context.Context, req *PasteRequest) (*models.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	root, err := s.roots.Resolve(req.RootKey)
	if err != nil {
		return nil, err
	}
	if err := pathutil.CleanLogical(req.TargetFolder); err != nil {
		return nil, err
	}

	result := &models.BatchResult{Total: len(req.PasteItems)}
	next := req.TargetOrdinal
	for _, item := range req.PasteItems {
		ord, err := s.pasteOne(ctx, root, req.TargetFolder, item, next)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Name, err))
			continue
		}
		result.Succeeded++
		if next != nil {
			n := ord + 1
			next = &n
		}
	}

	s.logger.Info("paste finished",
		"root", req.RootKey,
		"target", req.TargetFolder,
		"succeeded", result.Succeeded,
		"total", result.Total,
	)
	return result, nil
}

// pasteOne moves one entry and returns the ordinal it landed on.
func (s *MoveService) pasteOne(ctx context.Context, root *docroot.Root, targetFolder string, item PasteItem, targetOrdinal *int) (int, error) {
	if err := pathutil.ValidateEntryName(item.Name); err != nil {
		return 0, err
	}
	if err := pathutil.CleanLogical(item.SourceFolder); err != nil {
		return 0, err
	}
	_, rest, err := ordinal.Parse(item.Name)
	if err != nil {
		return 0, err
	}

	var landed int
	err = root.Tx.RunInTx(ctx, func(ctx context.Context) error {
		source := path.Join(item.SourceFolder, item.Name)
		if exists, err := root.Backend.Exists(ctx, source); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("%s: %w", source, domain.ErrNotFound)
		}

		shifter := NewShifter(root.Backend, s.logger)
		var target int
		if targetOrdinal != nil {
			target = *targetOrdinal
		} else {
			max, err := shifter.MaxOrdinal(ctx, targetFolder)
			if err != nil {
				return err
			}
			target = max + 1
		}

		// Moving within the same folder must not shift the entry itself.
		ignore := map[string]bool{}
		if item.SourceFolder == targetFolder {
			ignore[item.Name] = true
		}
		taken, err := ordinalTaken(ctx, shifter, targetFolder, target)
		if err != nil {
			return err
		}
		if taken {
			if err := shifter.ShiftDown(ctx, targetFolder, target, 1, ignore); err != nil {
				return err
			}
		}

		newName := ordinal.Format(target, rest)
		if err := root.Backend.Rename(ctx, source, path.Join(targetFolder, newName)); err != nil {
			return err
		}
		landed = target
		return nil
	})
	if err != nil {
		return 0, err
	}
	return landed, nil
}
