// Package docroot maps logical root keys to storage backends. Every
// operation in the store is scoped to exactly one document root per call.
package docroot

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"notetree/internal/domain"
	"notetree/internal/search"
	"notetree/internal/storage"
	"notetree/internal/storage/fs"
	"notetree/internal/storage/postgres"
)

// Kind selects the storage engine backing a root.
type Kind string

const (
	KindFS       Kind = "fs"
	KindPostgres Kind = "postgres"
)

// Spec is one root entry of the YAML roots file.
type Spec struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

type rootsFile struct {
	Roots map[string]Spec `yaml:"roots"`
}

// Root bundles everything a request needs once its key is resolved.
type Root struct {
	Key      string
	Kind     Kind
	Backend  storage.Backend
	Tx       storage.TxRunner
	Searcher search.Searcher
}

// Registry resolves root keys to built Root instances.
type Registry struct {
	roots map[string]*Root
	keys  []string
}

// Options carries the shared dependencies for building backends.
type Options struct {
	// Postgres is nil when no relational roots are configured.
	Postgres *postgres.Config
	GrepBin  string
	PDFBin   string
	Logger   *slog.Logger
}

// LoadSpecs reads and parses the YAML roots file.
func LoadSpecs(path string) (map[string]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roots file %s: %w", path, err)
	}
	var f rootsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roots file %s: %w", path, err)
	}
	if len(f.Roots) == 0 {
		return nil, fmt.Errorf("roots file %s defines no roots", path)
	}
	return f.Roots, nil
}

// NewRegistry builds backends for every configured root.
func NewRegistry(specs map[string]Spec, opts Options) (*Registry, error) {
	r := &Registry{roots: make(map[string]*Root, len(specs))}
	for key, spec := range specs {
		root, err := buildRoot(key, spec, opts)
		if err != nil {
			return nil, err
		}
		r.roots[key] = root
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	return r, nil
}

func buildRoot(key string, spec Spec, opts Options) (*Root, error) {
	switch Kind(spec.Backend) {
	case KindFS:
		if spec.Path == "" {
			return nil, fmt.Errorf("root %q: fs backend requires a path", key)
		}
		backend, err := fs.New(spec.Path, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", key, err)
		}
		return &Root{
			Key:      key,
			Kind:     KindFS,
			Backend:  backend,
			Tx:       storage.NopTxRunner{},
			Searcher: search.NewGrepEngine(backend.Root(), opts.GrepBin, opts.PDFBin, opts.Logger),
		}, nil

	case KindPostgres:
		if opts.Postgres == nil || opts.Postgres.Pool == nil {
			return nil, fmt.Errorf("root %q: postgres backend configured but no database connection", key)
		}
		return &Root{
			Key:      key,
			Kind:     KindPostgres,
			Backend:  postgres.NewBackend(opts.Postgres, key),
			Tx:       postgres.NewTransactionManager(opts.Postgres.Pool),
			Searcher: postgres.NewSearchEngine(opts.Postgres, key),
		}, nil

	default:
		return nil, fmt.Errorf("root %q: unknown backend %q", key, spec.Backend)
	}
}

// Resolve returns the root for key, or ErrNotFound.
func (r *Registry) Resolve(key string) (*Root, error) {
	root, ok := r.roots[key]
	if !ok {
		return nil, fmt.Errorf("document root %q: %w", key, domain.ErrNotFound)
	}
	return root, nil
}

// Keys lists the configured root keys in sorted order.
func (r *Registry) Keys() []string { return r.keys }
