package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	payzcore "github.com/goliatone/go-payzcore"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const rootDir = "data/sql/migrations"

// Set is the migration directory of one dialect. Up lists the *.up.sql
// files in apply order; every one has a matching *.down.sql.
type Set struct {
	Dialect string
	Dir     string
	FS      fs.FS
	Up      []string
}

// RegisterFunc hands a resolved set to a migration runner, typically
// persistence.Client.RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, set Set) error

type Option func(*options)

type options struct {
	root fs.FS
}

// WithRoot replaces the embedded payzcore filesystem. root must contain
// data/sql/migrations or hold the postgres *.sql files at its top level.
func WithRoot(root fs.FS) Option {
	return func(o *options) {
		if root != nil {
			o.root = root
		}
	}
}

func Dialects() []string {
	return []string{DialectPostgres, DialectSQLite}
}

// Sets resolves the postgres and sqlite migration sets.
func Sets(opts ...Option) ([]Set, error) {
	sets := make([]Set, 0, 2)
	for _, dialect := range Dialects() {
		set, err := ForDialect(dialect, opts...)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func ForDialect(dialect string, opts ...Option) (Set, error) {
	cfg := options{root: payzcore.GetMigrationsFS()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	base, dir, err := resolveBase(cfg.root)
	if err != nil {
		return Set{}, err
	}
	set := Set{Dialect: normalizeDialect(dialect), Dir: dir, FS: base}
	switch set.Dialect {
	case DialectPostgres:
	case DialectSQLite:
		sub, err := fs.Sub(base, "sqlite")
		if err != nil {
			return Set{}, fmt.Errorf("migrations: resolve sqlite directory: %w", err)
		}
		set.FS = sub
		set.Dir = path.Join(dir, "sqlite")
	default:
		return Set{}, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}

	up, err := fs.Glob(set.FS, "*.up.sql")
	if err != nil {
		return Set{}, fmt.Errorf("migrations: list %s: %w", set.Dir, err)
	}
	if len(up) == 0 {
		return Set{}, fmt.Errorf("migrations: %s directory %q has no *.up.sql files", set.Dialect, set.Dir)
	}
	for _, name := range up {
		down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(set.FS, down); err != nil {
			return Set{}, fmt.Errorf("migrations: %s/%s has no down migration", set.Dir, name)
		}
	}
	set.Up = up
	return set, nil
}

// Register resolves the set for dialect and passes it to register.
func Register(ctx context.Context, dialect string, register RegisterFunc, opts ...Option) (Set, error) {
	if register == nil {
		return Set{}, fmt.Errorf("migrations: register function is required")
	}
	set, err := ForDialect(dialect, opts...)
	if err != nil {
		return Set{}, err
	}
	if err := register(ctx, set); err != nil {
		return set, fmt.Errorf("migrations: register %s (%s): %w", set.Dialect, set.Dir, err)
	}
	return set, nil
}

func resolveBase(root fs.FS) (fs.FS, string, error) {
	if _, err := fs.Stat(root, rootDir); err == nil {
		sub, err := fs.Sub(root, rootDir)
		if err != nil {
			return nil, "", fmt.Errorf("migrations: resolve %s: %w", rootDir, err)
		}
		return sub, rootDir, nil
	}
	if matches, _ := fs.Glob(root, "*.sql"); len(matches) > 0 {
		return root, ".", nil
	}
	return nil, "", fmt.Errorf("migrations: %s not found", rootDir)
}

func normalizeDialect(dialect string) string {
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	switch dialect {
	case "postgresql", "pg":
		return DialectPostgres
	case "sqlite3":
		return DialectSQLite
	}
	return dialect
}
