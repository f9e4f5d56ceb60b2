package docsys

import (
	"context"
	"fmt"
	"log/slog"

	"notetree/internal/docroot"
	"notetree/internal/domain"
	"notetree/internal/domain/models"
)

// rootResolver resolves a document root key to its built backend bundle.
type rootResolver interface {
	Resolve(key string) (*docroot.Root, error)
}

// TreeService renders document trees per root.
type TreeService struct {
	roots  rootResolver
	logger *slog.Logger
}

// NewTreeService creates a new tree service.
func NewTreeService(roots rootResolver, logger *slog.Logger) *TreeService {
	return &TreeService{roots: roots, logger: logger}
}

// Render builds the ordered node list for one folder of a root.
func (s *TreeService) Render(ctx context.Context, rootKey, folder string, pullup bool) ([]*models.Node, error) {
	root, err := s.roots.Resolve(rootKey)
	if err != nil {
		return nil, err
	}
	builder := NewTreeBuilder(root.Backend, NewShifter(root.Backend, s.logger), s.logger)
	nodes, err := builder.Render(ctx, folder, pullup)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []*models.Node{}
	}
	s.logger.Debug("tree rendered",
		"root", rootKey,
		"folder", folder,
		"pullup", pullup,
		"nodes", len(nodes),
	)
	return nodes, nil
}

// SearchService answers content queries per root.
type SearchService struct {
	roots  rootResolver
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(roots rootResolver, logger *slog.Logger) *SearchService {
	return &SearchService{roots: roots, logger: logger}
}

// Search runs one query against a root's search engine. Zero matches is
// success with an empty slice.
func (s *SearchService) Search(ctx context.Context, rootKey string, req *models.SearchRequest) ([]models.SearchHit, error) {
	root, err := s.roots.Resolve(rootKey)
	if err != nil {
		return nil, err
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hits, err := root.Searcher.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("search finished",
		"root", rootKey,
		"mode", req.Mode,
		"include_pdf", req.IncludePDF,
		"hits", len(hits),
	)
	return hits, nil
}
