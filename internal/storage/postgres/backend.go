package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"notetree/internal/domain"
	"notetree/internal/ordinal"
	"notetree/internal/pathutil"
	"notetree/internal/storage"
)

// Backend stores one document root's nodes as rows keyed
// (root_key, parent_path, filename). Logical paths mirror the filesystem
// backend: forward slashes, "" for the root.
type Backend struct {
	pool    *pgxpool.Pool
	tables  *TableNames
	rootKey string
	logger  *slog.Logger
}

// NewBackend creates a relational backend scoped to one root key.
func NewBackend(cfg *Config, rootKey string) *Backend {
	return &Backend{
		pool:    cfg.Pool,
		tables:  cfg.Tables,
		rootKey: rootKey,
		logger:  cfg.Logger,
	}
}

// splitLogical validates a logical path and splits it into parent and name.
func splitLogical(logical string) (parent, name string, err error) {
	if err := pathutil.CleanLogical(logical); err != nil {
		return "", "", err
	}
	if logical == "" {
		return "", "", nil
	}
	dir, file := path.Split(logical)
	return strings.TrimSuffix(dir, "/"), file, nil
}

// checkWriteName rejects new names written without a valid ordinal prefix.
func checkWriteName(logical string) error {
	_, _, err := ordinal.Parse(path.Base(logical))
	return err
}

func (b *Backend) Exists(ctx context.Context, logical string) (bool, error) {
	parent, name, err := splitLogical(logical)
	if err != nil {
		return false, err
	}
	if name == "" {
		return true, nil // implicit root
	}
	query := fmt.Sprintf(`
		SELECT 1 FROM %s
		WHERE root_key = $1 AND parent_path = $2 AND filename = $3
	`, b.tables.Nodes)

	var one int
	err = executor(ctx, b.pool).QueryRow(ctx, query, b.rootKey, parent, name).Scan(&one)
	if err != nil {
		if isPgNoRowsError(err) {
			return false, nil
		}
		return false, fmt.Errorf("exists %s: %w", logical, err)
	}
	return true, nil
}

func (b *Backend) Stat(ctx context.Context, logical string) (*storage.FileInfo, error) {
	parent, name, err := splitLogical(logical)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return &storage.FileInfo{IsDir: true}, nil
	}
	query := fmt.Sprintf(`
		SELECT is_dir, COALESCE(octet_length(content), 0), created_at, updated_at
		FROM %s
		WHERE root_key = $1 AND parent_path = $2 AND filename = $3
	`, b.tables.Nodes)

	var info storage.FileInfo
	err = executor(ctx, b.pool).QueryRow(ctx, query, b.rootKey, parent, name).Scan(
		&info.IsDir,
		&info.SizeBytes,
		&info.CreateTime,
		&info.ModifyTime,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", logical, err)
	}
	return &info, nil
}

func (b *Backend) ReadDir(ctx context.Context, logical string) ([]string, error) {
	if err := pathutil.CleanLogical(logical); err != nil {
		return nil, err
	}
	if logical != "" {
		info, err := b.Stat(ctx, logical)
		if err != nil {
			return nil, err
		}
		if !info.IsDir {
			return nil, fmt.Errorf("%s is not a directory: %w", logical, domain.ErrNotFound)
		}
	}
	query := fmt.Sprintf(`
		SELECT filename FROM %s
		WHERE root_key = $1 AND parent_path = $2
		ORDER BY filename ASC
	`, b.tables.Nodes)

	rows, err := executor(ctx, b.pool).Query(ctx, query, b.rootKey, logical)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", logical, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return names, nil
}

func (b *Backend) ReadFile(ctx context.Context, logical string) ([]byte, error) {
	parent, name, err := splitLogical(logical)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT content FROM %s
		WHERE root_key = $1 AND parent_path = $2 AND filename = $3 AND NOT is_dir
	`, b.tables.Nodes)

	var content []byte
	err = executor(ctx, b.pool).QueryRow(ctx, query, b.rootKey, parent, name).Scan(&content)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", logical, err)
	}
	return content, nil
}

func (b *Backend) WriteFile(ctx context.Context, logical string, data []byte) error {
	if err := checkWriteName(logical); err != nil {
		return err
	}
	parent, name, err := splitLogical(logical)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (root_key, parent_path, filename, is_dir, content)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (root_key, parent_path, filename)
		DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()
		WHERE NOT %s.is_dir
	`, b.tables.Nodes, b.tables.Nodes)

	tag, err := executor(ctx, b.pool).Exec(ctx, query, b.rootKey, parent, name, data)
	if err != nil {
		return fmt.Errorf("write %s: %w", logical, err)
	}
	if tag.RowsAffected() == 0 {
		// The conflicting row is a directory.
		return fmt.Errorf("%s is a folder: %w", logical, domain.ErrConflict)
	}
	return nil
}

func (b *Backend) Mkdir(ctx context.Context, logical string, recursive bool) error {
	if err := checkWriteName(logical); err != nil {
		return err
	}
	parent, name, err := splitLogical(logical)
	if err != nil {
		return err
	}
	if recursive {
		query := fmt.Sprintf(`
			INSERT INTO %s (root_key, parent_path, filename, is_dir)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (root_key, parent_path, filename) DO NOTHING
		`, b.tables.Nodes)
		if _, err := executor(ctx, b.pool).Exec(ctx, query, b.rootKey, parent, name); err != nil {
			return fmt.Errorf("mkdir -p %s: %w", logical, err)
		}
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (root_key, parent_path, filename, is_dir)
		VALUES ($1, $2, $3, TRUE)
	`, b.tables.Nodes)
	if _, err := executor(ctx, b.pool).Exec(ctx, query, b.rootKey, parent, name); err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("%s: %w", logical, domain.ErrConflict)
		}
		return fmt.Errorf("mkdir %s: %w", logical, err)
	}
	return nil
}

func (b *Backend) Rename(ctx context.Context, oldLogical, newLogical string) error {
	if err := checkWriteName(newLogical); err != nil {
		return err
	}
	oldParent, oldName, err := splitLogical(oldLogical)
	if err != nil {
		return err
	}
	newParent, newName, err := splitLogical(newLogical)
	if err != nil {
		return err
	}

	if exists, err := b.Exists(ctx, newLogical); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%s: %w", newLogical, domain.ErrConflict)
	}

	var isDir bool
	lookup := fmt.Sprintf(`
		SELECT is_dir FROM %s
		WHERE root_key = $1 AND parent_path = $2 AND filename = $3
	`, b.tables.Nodes)
	if err := executor(ctx, b.pool).QueryRow(ctx, lookup, b.rootKey, oldParent, oldName).Scan(&isDir); err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("%s: %w", oldLogical, domain.ErrNotFound)
		}
		return fmt.Errorf("rename lookup %s: %w", oldLogical, err)
	}

	update := fmt.Sprintf(`
		UPDATE %s SET parent_path = $4, filename = $5, updated_at = NOW()
		WHERE root_key = $1 AND parent_path = $2 AND filename = $3
	`, b.tables.Nodes)
	if _, err := executor(ctx, b.pool).Exec(ctx, update,
		b.rootKey, oldParent, oldName, newParent, newName); err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("%s: %w", newLogical, domain.ErrConflict)
		}
		return fmt.Errorf("rename %s -> %s: %w", oldLogical, newLogical, err)
	}

	if isDir {
		// Re-parent every descendant row under the new prefix.
		cascade := fmt.Sprintf(`
			UPDATE %s
			SET parent_path = $3 || SUBSTRING(parent_path FROM CHAR_LENGTH($2::text) + 1)
			WHERE root_key = $1 AND (parent_path = $2 OR parent_path LIKE $2 || '/%%')
		`, b.tables.Nodes)
		if _, err := executor(ctx, b.pool).Exec(ctx, cascade, b.rootKey, oldLogical, newLogical); err != nil {
			return fmt.Errorf("rename descendants of %s: %w", oldLogical, err)
		}
	}
	return nil
}

func (b *Backend) RemoveFile(ctx context.Context, logical string) error {
	parent, name, err := splitLogical(logical)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE root_key = $1 AND parent_path = $2 AND filename = $3 AND NOT is_dir
	`, b.tables.Nodes)

	tag, err := executor(ctx, b.pool).Exec(ctx, query, b.rootKey, parent, name)
	if err != nil {
		return fmt.Errorf("remove %s: %w", logical, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
	}
	return nil
}

func (b *Backend) RemoveDir(ctx context.Context, logical string, opts storage.RemoveDirOptions) error {
	parent, name, err := splitLogical(logical)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: cannot remove the document root", domain.ErrAccessDenied)
	}

	exists, err := b.Exists(ctx, logical)
	if err != nil {
		return err
	}
	if !exists {
		if opts.Force {
			return nil
		}
		return fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
	}

	if !opts.Recursive {
		children, err := b.ReadDir(ctx, logical)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return fmt.Errorf("%s: %w", logical, domain.ErrNotEmpty)
		}
	}

	descendants := fmt.Sprintf(`
		DELETE FROM %s
		WHERE root_key = $1 AND (parent_path = $2 OR parent_path LIKE $2 || '/%%')
	`, b.tables.Nodes)
	if _, err := executor(ctx, b.pool).Exec(ctx, descendants, b.rootKey, logical); err != nil {
		return fmt.Errorf("remove descendants of %s: %w", logical, err)
	}

	self := fmt.Sprintf(`
		DELETE FROM %s
		WHERE root_key = $1 AND parent_path = $2 AND filename = $3 AND is_dir
	`, b.tables.Nodes)
	tag, err := executor(ctx, b.pool).Exec(ctx, self, b.rootKey, parent, name)
	if err != nil {
		return fmt.Errorf("rmdir %s: %w", logical, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", logical, domain.ErrNotFound)
	}
	return nil
}

var _ storage.Backend = (*Backend)(nil)
