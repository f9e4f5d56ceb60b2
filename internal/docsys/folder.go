package docsys

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"notetree/internal/domain"
	"notetree/internal/ordinal"
	"notetree/internal/pathutil"
)

// FolderService implements folder-level operations on a document root.
type FolderService struct {
	roots  rootResolver
	logger *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(roots rootResolver, logger *slog.Logger) *FolderService {
	return &FolderService{roots: roots, logger: logger}
}

// CreateFolderRequest creates a folder inside TreeFolder. A trailing
// underscore in the name marks a pullup folder.
type CreateFolderRequest struct {
	RootKey         string `json:"-"`
	FolderName      string `json:"folderName"`
	TreeFolder      string `json:"treeFolder"`
	InsertAfterNode string `json:"insertAfterNode,omitempty"`
}

func (r *CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FolderName,
			validation.Required,
			validation.Match(entryNameRe).Error("folder name cannot contain slashes"),
		),
	)
}

// CreateFolder shifts the insertion point's successors and creates the
// folder there. Returns the stored (ordinal-prefixed) folder name.
func (s *FolderService) CreateFolder(ctx context.Context, req *CreateFolderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	root, err := s.roots.Resolve(req.RootKey)
	if err != nil {
		return "", err
	}

	created, err := createEntry(ctx, root, req.TreeFolder, ordinal.Strip(req.FolderName), req.InsertAfterNode, entryFolder, nil, s.logger)
	if err != nil {
		return "", err
	}
	s.logger.Info("folder created",
		"root", req.RootKey,
		"folder", req.TreeFolder,
		"name", created,
	)
	return created, nil
}

// RenameFolderRequest renames a folder in place, keeping its ordinal.
type RenameFolderRequest struct {
	RootKey       string `json:"-"`
	OldFolderName string `json:"oldFolderName"`
	NewFolderName string `json:"newFolderName"`
	TreeFolder    string `json:"treeFolder"`
}

func (r *RenameFolderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OldFolderName, validation.Required),
		validation.Field(&r.NewFolderName,
			validation.Required,
			validation.Match(entryNameRe).Error("folder name cannot contain slashes"),
		),
	)
}

// RenameFolder renames the folder, preserving its ordinal prefix. Returns
// the new stored name.
func (s *FolderService) RenameFolder(ctx context.Context, req *RenameFolderRequest) (string, error) {
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

	ord, _, err := ordinal.Parse(req.OldFolderName)
	if err != nil {
		return "", err
	}
	newName := ordinal.Format(ord, ordinal.Strip(req.NewFolderName))
	if newName == req.OldFolderName {
		return newName, nil
	}

	err = root.Tx.RunInTx(ctx, func(ctx context.Context) error {
		oldFull := path.Join(req.TreeFolder, req.OldFolderName)
		info, err := root.Backend.Stat(ctx, oldFull)
		if err != nil {
			return err
		}
		if !info.IsDir {
			return fmt.Errorf("%s is not a folder: %w", req.OldFolderName, domain.ErrNotFound)
		}
		return root.Backend.Rename(ctx, oldFull, path.Join(req.TreeFolder, newName))
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("folder renamed",
		"root", req.RootKey,
		"from", req.OldFolderName,
		"to", newName,
	)
	return newName, nil
}
