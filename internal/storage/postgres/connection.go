// Package postgres implements the storage backend over a relational node
// table. Each node is one row keyed (root_key, parent_path, filename);
// multi-row mutations such as ordinal shifts run inside a transaction, so
// concurrent readers never observe a half-shifted directory.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TableNames holds environment-prefixed table names.
type TableNames struct {
	Nodes string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Nodes: fmt.Sprintf("%snodes", prefix),
	}
}

// Config holds the shared pieces every repository-side type needs.
type Config struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// CreateConnectionPool creates a pgx connection pool and verifies it with
// a ping.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Schema returns the DDL for the node table. Applied out of band by the
// deploy tooling; kept here so the layout lives next to the queries.
func Schema(tables *TableNames) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	root_key    TEXT        NOT NULL,
	parent_path TEXT        NOT NULL DEFAULT '',
	filename    TEXT        NOT NULL,
	is_dir      BOOLEAN     NOT NULL DEFAULT FALSE,
	content     BYTEA,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (root_key, parent_path, filename)
);
CREATE INDEX IF NOT EXISTS %s_parent_idx ON %s (root_key, parent_path);
`, tables.Nodes, tables.Nodes, tables.Nodes)
}
