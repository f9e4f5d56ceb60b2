// Package docsys implements the ordinal-ordered document tree: rendering,
// sibling shifting, and the file/folder operations exposed over HTTP.
package docsys

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"notetree/internal/docroot"
	"notetree/internal/domain"
	"notetree/internal/domain/models"
	"notetree/internal/ordinal"
	"notetree/internal/pathutil"
	"notetree/internal/storage"
)

var entryNameRe = regexp.MustCompile(`^[^/\\]+$`)

// DocumentService implements file-level operations on a document root.
type DocumentService struct {
	roots  rootResolver
	logger *slog.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(roots rootResolver, logger *slog.Logger) *DocumentService {
	return &DocumentService{roots: roots, logger: logger}
}

// CreateFileRequest creates a file inside TreeFolder. When InsertAfterNode
// is empty the file is inserted at the top (ordinal 0).
type CreateFileRequest struct {
	RootKey         string `json:"-"`
	FileName        string `json:"fileName"`
	TreeFolder      string `json:"treeFolder"`
	InsertAfterNode string `json:"insertAfterNode,omitempty"`
}

func (r *CreateFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FileName,
			validation.Required,
			validation.Match(entryNameRe).Error("file name cannot contain slashes"),
		),
	)
}

// CreateFile shifts the insertion point's successors and writes an empty
// file there. Extensionless names get ".md" appended. Returns the stored
// (ordinal-prefixed) filename.
func (s *DocumentService) CreateFile(ctx context.Context, req *CreateFileRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	root, err := s.roots.Resolve(req.RootKey)
	if err != nil {
		return "", err
	}

	name := ordinal.Strip(req.FileName)
	if path.Ext(name) == "" {
		name += ".md"
	}

	created, err := createEntry(ctx, root, req.TreeFolder, name, req.InsertAfterNode, entryFile, nil, s.logger)
	if err != nil {
		return "", err
	}
	s.logger.Info("file created",
		"root", req.RootKey,
		"folder", req.TreeFolder,
		"name", created,
	)
	return created, nil
}

// SaveFileRequest writes Content to FileName; when NewFileName is set the
// file is renamed first, keeping its ordinal.
type SaveFileRequest struct {
	RootKey     string `json:"-"`
	FileName    string `json:"fileName"`
	TreeFolder  string `json:"treeFolder"`
	Content     string `json:"content"`
	NewFileName string `json:"newFileName,omitempty"`
}

func (r *SaveFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FileName,
			validation.Required,
			validation.Match(entryNameRe).Error("file name cannot contain slashes"),
		),
		validation.Field(&r.NewFileName,
			validation.Match(entryNameRe).Error("file name cannot contain slashes"),
		),
	)
}

// SaveFile persists content, renaming first when requested. Returns the
// filename the content now lives under.
func (s *DocumentService) SaveFile(ctx context.Context, req *SaveFileRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	root, err := s.roots.Resolve(req.RootKey)
	if err != nil {
		return "", err
	}
	if err := pathutil.CleanLogical(req.TreeFolder); err != nil {
		return "", err
	}

	finalName := req.FileName
	err = root.Tx.RunInTx(ctx, func(ctx context.Context) error {
		full := path.Join(req.TreeFolder, req.FileName)
		if exists, err := root.Backend.Exists(ctx, full); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("%s: %w", req.FileName, domain.ErrNotFound)
		}

		if req.NewFileName != "" && req.NewFileName != req.FileName {
			ord, _, err := ordinal.Parse(req.FileName)
			if err != nil {
				return err
			}
			renamed := ordinal.Format(ord, ordinal.Strip(req.NewFileName))
			if renamed != req.FileName {
				if err := root.Backend.Rename(ctx, full, path.Join(req.TreeFolder, renamed)); err != nil {
					return err
				}
				finalName = renamed
				full = path.Join(req.TreeFolder, renamed)
			}
		}

		return root.Backend.WriteFile(ctx, full, []byte(req.Content))
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("file saved",
		"root", req.RootKey,
		"folder", req.TreeFolder,
		"name", finalName,
	)
	return finalName, nil
}

// FileContent is the payload of a single-file read.
type FileContent struct {
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifyTime time.Time `json:"modify_time"`
}

// ReadFile returns one file's content and metadata.
func (s *DocumentService) ReadFile(ctx context.Context, rootKey, logical string) (*FileContent, error) {
	root, err := s.roots.Resolve(rootKey)
	if err != nil {
		return nil, err
	}
	if err := pathutil.CleanLogical(logical); err != nil {
		return nil, err
	}
	if logical == "" {
		return nil, fmt.Errorf("%w: path is required", domain.ErrValidation)
	}

	info, err := root.Backend.Stat(ctx, logical)
	if err != nil {
		return nil, err
	}
	if info.IsDir {
		return nil, fmt.Errorf("%s is a folder: %w", logical, domain.ErrNotFound)
	}
	data, err := root.Backend.ReadFile(ctx, logical)
	if err != nil {
		return nil, err
	}
	return &FileContent{
		Name:       path.Base(logical),
		Content:    string(data),
		SizeBytes:  info.SizeBytes,
		ModifyTime: info.ModifyTime,
	}, nil
}

// DeleteRequest removes the named entries from TreeFolder. Folders are
// removed recursively.
type DeleteRequest struct {
	RootKey    string   `json:"-"`
	TreeFolder string   `json:"treeFolder"`
	FileNames  []string `json:"fileNames"`
}

func (r *DeleteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FileNames, validation.Required),
	)
}

// Delete attempts every item independently; a failing item is recorded and
// never aborts the rest of the batch.
func (s *DocumentService) Delete(ctx context.Context, req *DeleteRequest) (*models.BatchResult, error) {
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

	result := &models.BatchResult{Total: len(req.FileNames)}
	for _, name := range req.FileNames {
		if err := s.deleteOne(ctx, root, req.TreeFolder, name); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.Succeeded++
	}

	s.logger.Info("batch delete finished",
		"root", req.RootKey,
		"folder", req.TreeFolder,
		"succeeded", result.Succeeded,
		"total", result.Total,
	)
	return result, nil
}

func (s *DocumentService) deleteOne(ctx context.Context, root *docroot.Root, folder, name string) error {
	if err := pathutil.ValidateEntryName(name); err != nil {
		return err
	}
	full := path.Join(folder, name)
	return root.Tx.RunInTx(ctx, func(ctx context.Context) error {
		info, err := root.Backend.Stat(ctx, full)
		if err != nil {
			return err
		}
		if info.IsDir {
			return root.Backend.RemoveDir(ctx, full, storage.RemoveDirOptions{Recursive: true})
		}
		return root.Backend.RemoveFile(ctx, full)
	})
}

type entryKind int

const (
	entryFile entryKind = iota
	entryFolder
)

// createEntry opens ordinal space at the insertion point and writes the new
// entry. The shift always happens before the write, inside the root's
// transaction scope when the backend has one.
func createEntry(ctx context.Context, root *docroot.Root, folder, logicalName, insertAfter string, kind entryKind, content []byte, logger *slog.Logger) (string, error) {
	if err := pathutil.CleanLogical(folder); err != nil {
		return "", err
	}
	if err := pathutil.ValidateEntryName(logicalName); err != nil {
		return "", err
	}

	var created string
	err := root.Tx.RunInTx(ctx, func(ctx context.Context) error {
		shifter := NewShifter(root.Backend, logger)

		// Two siblings may not share a logical name regardless of ordinal.
		sibs, err := shifter.ordered(ctx, folder)
		if err != nil {
			return err
		}
		for _, sib := range sibs {
			if ordinal.Strip(sib.name) == logicalName {
				return &domain.ConflictError{
					Message:  fmt.Sprintf("%s already exists as %s", logicalName, sib.name),
					Existing: sib.name,
				}
			}
		}

		target := 0
		if insertAfter != "" {
			afterOrd, _, err := ordinal.Parse(insertAfter)
			if err != nil {
				return err
			}
			if exists, err := root.Backend.Exists(ctx, path.Join(folder, insertAfter)); err != nil {
				return err
			} else if !exists {
				return fmt.Errorf("%s: %w", insertAfter, domain.ErrNotFound)
			}
			target = afterOrd + 1
		}

		taken, err := ordinalTaken(ctx, shifter, folder, target)
		if err != nil {
			return err
		}
		if taken {
			if err := shifter.ShiftDown(ctx, folder, target, 1, nil); err != nil {
				return err
			}
		}

		name := ordinal.Format(target, logicalName)
		full := path.Join(folder, name)
		if exists, err := root.Backend.Exists(ctx, full); err != nil {
			return err
		} else if exists {
			return &domain.ConflictError{
				Message:  fmt.Sprintf("%s already exists", name),
				Existing: name,
			}
		}

		if kind == entryFolder {
			if err := root.Backend.Mkdir(ctx, full, false); err != nil {
				return err
			}
		} else {
			if err := root.Backend.WriteFile(ctx, full, content); err != nil {
				return err
			}
		}
		created = name
		return nil
	})
	if err != nil {
		return "", err
	}
	return created, nil
}

// ordinalTaken reports whether any sibling of folder already carries ord.
func ordinalTaken(ctx context.Context, shifter *Shifter, folder string, ord int) (bool, error) {
	sibs, err := shifter.ordered(ctx, folder)
	if err != nil {
		return false, err
	}
	for _, sib := range sibs {
		if sib.ord == ord {
			return true, nil
		}
	}
	return false, nil
}
