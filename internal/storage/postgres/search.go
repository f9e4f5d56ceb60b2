package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"

	"notetree/internal/domain"
	"notetree/internal/domain/models"
	"notetree/internal/pathutil"
	"notetree/internal/search"
)

// textFilenamePattern restricts SQL content filters to rows whose payload
// is line-oriented text; binary rows are never decoded server-side.
const textFilenamePattern = `\.(md|txt|json|yaml|yml|csv|log|html|css|js|ts|go|sh|xml)$`

const embeddedDatePattern = `\[[0-9]{1,2}/[0-9]{1,2}/[0-9]{4} [0-9]{1,2}:[0-9]{2} (AM|PM)\]`

// SearchEngine answers the search contract for Postgres-backed roots: SQL
// narrows the candidate rows (scope, timestamp filter, per-term ILIKE chain
// or regex), then the matching lines are extracted in-process.
//
// PDF content is not text-extractable server-side, so Postgres roots report
// text hits only.
type SearchEngine struct {
	pool    *pgxpool.Pool
	tables  *TableNames
	rootKey string
	logger  *slog.Logger
}

// NewSearchEngine creates a relational search engine for one root key.
func NewSearchEngine(cfg *Config, rootKey string) *SearchEngine {
	return &SearchEngine{
		pool:    cfg.Pool,
		tables:  cfg.Tables,
		rootKey: rootKey,
		logger:  cfg.Logger,
	}
}

func (e *SearchEngine) Search(ctx context.Context, req *models.SearchRequest) ([]models.SearchHit, error) {
	if err := pathutil.CleanLogical(req.Folder); err != nil {
		return nil, err
	}

	matcher, err := search.NewMatcher(req.Mode, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	query, args, err := e.buildCandidateQuery(req, matcher.Terms())
	if err != nil {
		return nil, err
	}

	rows, err := executor(ctx, e.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	hits := []models.SearchHit{}
	modTimes := map[string]time.Time{}
	for rows.Next() {
		var parent, filename string
		var content []byte
		var updatedAt time.Time
		if err := rows.Scan(&parent, &filename, &content, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		if !utf8.Valid(content) {
			continue
		}
		file := path.Join(parent, filename)
		text := string(content)
		if req.Mode == models.SearchModeMatchAll && !matcher.FileMatches(text) {
			continue
		}
		modTimes[file] = updatedAt
		for i, line := range strings.Split(text, "\n") {
			if matcher.MatchLine(line) {
				hits = append(hits, models.SearchHit{File: file, Line: i + 1, Content: line})
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}

	search.Sort(hits, req.Order, func(file string) (time.Time, error) {
		return modTimes[file], nil
	})
	return hits, nil
}

// buildCandidateQuery narrows rows server-side the same way the grep
// engine narrows files: scope, text-only payloads, timestamp pre-filter,
// then the mode's term filters.
func (e *SearchEngine) buildCandidateQuery(req *models.SearchRequest, terms []string) (string, []any, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `
		SELECT parent_path, filename, content, updated_at
		FROM %s
		WHERE root_key = $1 AND NOT is_dir AND filename ~* $2
	`, e.tables.Nodes)
	args := []any{e.rootKey, textFilenamePattern}

	if req.Folder != "" {
		args = append(args, req.Folder)
		n := len(args)
		fmt.Fprintf(&sb, ` AND (parent_path = $%d OR parent_path LIKE $%d || '/%%')`, n, n)
	}

	if req.RequireDate {
		args = append(args, embeddedDatePattern)
		fmt.Fprintf(&sb, ` AND convert_from(content, 'UTF8') ~ $%d`, len(args))
	}

	switch req.Mode {
	case models.SearchModeRegex:
		args = append(args, req.Query)
		fmt.Fprintf(&sb, ` AND convert_from(content, 'UTF8') ~* $%d`, len(args))
	case models.SearchModeMatchAny:
		var ors []string
		for _, term := range terms {
			args = append(args, "%"+escapeLike(term)+"%")
			ors = append(ors, fmt.Sprintf(`convert_from(content, 'UTF8') ILIKE $%d`, len(args)))
		}
		fmt.Fprintf(&sb, ` AND (%s)`, strings.Join(ors, " OR "))
	case models.SearchModeMatchAll:
		for _, term := range terms {
			args = append(args, "%"+escapeLike(term)+"%")
			fmt.Fprintf(&sb, ` AND convert_from(content, 'UTF8') ILIKE $%d`, len(args))
		}
	default:
		return "", nil, fmt.Errorf("%w: invalid search mode %q", domain.ErrValidation, req.Mode)
	}

	sb.WriteString(` ORDER BY parent_path, filename`)
	return sb.String(), args, nil
}

// escapeLike escapes the ILIKE metacharacters in a literal term.
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

var _ search.Searcher = (*SearchEngine)(nil)
