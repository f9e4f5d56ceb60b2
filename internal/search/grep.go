package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"notetree/internal/domain"
	"notetree/internal/domain/models"
	"notetree/internal/pathutil"
)

// GrepEngine searches filesystem-backed roots by driving external tools:
// a line-oriented grep over text content and a PDF content grep. The two
// halves run concurrently and the response is produced once both join.
type GrepEngine struct {
	root    string
	grepBin string
	pdfBin  string
	logger  *slog.Logger
}

// NewGrepEngine creates a search engine over the physical root directory.
func NewGrepEngine(root, grepBin, pdfBin string, logger *slog.Logger) *GrepEngine {
	return &GrepEngine{root: root, grepBin: grepBin, pdfBin: pdfBin, logger: logger}
}

func (e *GrepEngine) Search(ctx context.Context, req *models.SearchRequest) ([]models.SearchHit, error) {
	dir, err := pathutil.SecureJoin(e.root, req.Folder)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("search folder %s: %w", req.Folder, domain.ErrNotFound)
	}

	var terms []string
	if req.Mode != models.SearchModeRegex {
		terms = ParseTerms(req.Query)
		if len(terms) == 0 {
			return nil, fmt.Errorf("%w: query contains no search terms", domain.ErrValidation)
		}
	}

	var textHits, pdfHits []models.SearchHit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		textHits, err = e.searchText(gctx, dir, req, terms)
		return err
	})
	if req.IncludePDF {
		g.Go(func() error {
			var err error
			pdfHits, err = e.searchPDF(gctx, dir, req, terms)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hits := append(textHits, pdfHits...)
	for i := range hits {
		hits[i].File = e.relPath(hits[i].File)
	}
	Sort(hits, req.Order, func(file string) (time.Time, error) {
		fi, err := os.Stat(filepath.Join(e.root, filepath.FromSlash(file)))
		if err != nil {
			return time.Time{}, err
		}
		return fi.ModTime(), nil
	})
	if hits == nil {
		hits = []models.SearchHit{}
	}
	return hits, nil
}

// searchText resolves the text half: optional timestamp pre-filter, then
// per-mode term filters, then line extraction over the surviving files.
func (e *GrepEngine) searchText(ctx context.Context, dir string, req *models.SearchRequest, terms []string) ([]models.SearchHit, error) {
	// Candidate file set; nil means "the whole subtree, not yet narrowed".
	var files []string
	narrowed := false

	if req.RequireDate {
		out, err := e.runTool(ctx, e.grepBin, "-rIlE", timestampPattern, dir)
		if err != nil {
			return nil, err
		}
		files, narrowed = out, true
		if len(files) == 0 {
			return nil, nil
		}
	}

	var linePattern string
	switch req.Mode {
	case models.SearchModeRegex:
		linePattern = req.Query
	case models.SearchModeMatchAny:
		linePattern = alternation(terms)
	case models.SearchModeMatchAll:
		// Chain of per-term file filters; only files containing every
		// term survive to line extraction.
		for _, term := range terms {
			pat := regexp.QuoteMeta(term)
			var out []string
			var err error
			if narrowed {
				if len(files) == 0 {
					return nil, nil
				}
				out, err = e.runTool(ctx, e.grepBin, append([]string{"-iIlE", pat, "--"}, files...)...)
			} else {
				out, err = e.runTool(ctx, e.grepBin, "-riIlE", pat, dir)
			}
			if err != nil {
				return nil, err
			}
			files, narrowed = out, true
		}
		linePattern = alternation(terms)
	}

	var out []string
	var err error
	if narrowed {
		if len(files) == 0 {
			return nil, nil
		}
		out, err = e.runTool(ctx, e.grepBin, append([]string{"-inIHE", linePattern, "--"}, files...)...)
	} else {
		out, err = e.runTool(ctx, e.grepBin, "-rinIE", linePattern, dir)
	}
	if err != nil {
		return nil, err
	}
	return parseGrepLines(out), nil
}

// searchPDF resolves the PDF half. Extraction is file-level only: hits are
// reported with the sentinel line and empty content.
func (e *GrepEngine) searchPDF(ctx context.Context, dir string, req *models.SearchRequest, terms []string) ([]models.SearchHit, error) {
	patterns := []string{}
	if req.RequireDate {
		patterns = append(patterns, timestampPattern)
	}
	switch req.Mode {
	case models.SearchModeRegex:
		patterns = append(patterns, req.Query)
	case models.SearchModeMatchAny:
		patterns = append(patterns, alternation(terms))
	case models.SearchModeMatchAll:
		for _, term := range terms {
			patterns = append(patterns, regexp.QuoteMeta(term))
		}
	}

	var files []string
	narrowed := false
	for _, pat := range patterns {
		var out []string
		var err error
		if narrowed {
			if len(files) == 0 {
				return nil, nil
			}
			out, err = e.runTool(ctx, e.pdfBin, append([]string{"-il", pat, "--"}, files...)...)
		} else {
			out, err = e.runTool(ctx, e.pdfBin, "-ril", pat, dir)
		}
		if err != nil {
			return nil, err
		}
		files, narrowed = out, true
	}

	hits := make([]models.SearchHit, 0, len(files))
	for _, f := range files {
		hits = append(hits, models.SearchHit{File: f, Line: PDFLine, Content: ""})
	}
	return hits, nil
}

// runTool executes one external search process. Exit code 1 means "no
// matches" and is success with empty output; anything else non-zero is a
// tool invocation failure.
func (e *GrepEngine) runTool(ctx context.Context, bin string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("run %s: %w", bin, err)
	}
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// parseGrepLines parses "file:line:content" tool output.
func parseGrepLines(out []string) []models.SearchHit {
	var hits []models.SearchHit
	for _, raw := range out {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 {
			continue
		}
		line, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		hits = append(hits, models.SearchHit{File: parts[0], Line: line, Content: parts[2]})
	}
	return hits
}

func alternation(terms []string) string {
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(escaped, "|")
}

func (e *GrepEngine) relPath(abs string) string {
	rel, err := filepath.Rel(e.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

var _ Searcher = (*GrepEngine)(nil)
