package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	payzmigrations "github.com/goliatone/go-payzcore/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"

	defaultPingTimeout = 5 * time.Second
	otelIdentifier     = "go-payzcore"
)

type persistenceConfig struct {
	driver      string
	server      string
	debug       bool
	pingTimeout time.Duration
}

func (c persistenceConfig) GetDebug() bool {
	return c.debug
}

func (c persistenceConfig) GetDriver() string {
	return c.driver
}

func (c persistenceConfig) GetServer() string {
	return c.server
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return c.pingTimeout
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return otelIdentifier
}

type OpenOption func(*openOptions)

type openOptions struct {
	debug          bool
	pingTimeout    time.Duration
	skipMigrations bool
	maxOpenConns   int
}

func WithDebug(enabled bool) OpenOption {
	return func(o *openOptions) {
		o.debug = enabled
	}
}

func WithPingTimeout(timeout time.Duration) OpenOption {
	return func(o *openOptions) {
		if timeout > 0 {
			o.pingTimeout = timeout
		}
	}
}

func WithMaxOpenConns(n int) OpenOption {
	return func(o *openOptions) {
		o.maxOpenConns = n
	}
}

// WithoutMigrations opens the client without applying the embedded schema.
func WithoutMigrations() OpenOption {
	return func(o *openOptions) {
		o.skipMigrations = true
	}
}

// OpenPostgres opens a lib/pq backed persistence client and applies the
// postgres migrations.
func OpenPostgres(ctx context.Context, dsn string, opts ...OpenOption) (*persistence.Client, error) {
	return open(ctx, driverPostgres, payzmigrations.DialectPostgres, dsn, pgdialect.New(), opts...)
}

// OpenSQLite opens a go-sqlite3 backed persistence client and applies the
// sqlite migrations.
func OpenSQLite(ctx context.Context, dsn string, opts ...OpenOption) (*persistence.Client, error) {
	return open(ctx, driverSQLite, payzmigrations.DialectSQLite, dsn, sqlitedialect.New(), opts...)
}

func open(
	ctx context.Context,
	driver string,
	dialect string,
	dsn string,
	bunDialect schema.Dialect,
	opts ...OpenOption,
) (*persistence.Client, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: %s dsn is required", driver)
	}
	options := openOptions{pingTimeout: defaultPingTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if options.maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(options.maxOpenConns)
	}

	client, err := persistence.New(persistenceConfig{
		driver:      driver,
		server:      dsn,
		debug:       options.debug,
		pingTimeout: options.pingTimeout,
	}, sqlDB, bunDialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	if options.skipMigrations {
		return client, nil
	}

	_, err = payzmigrations.Register(ctx, dialect, func(_ context.Context, set payzmigrations.Set) error {
		client.RegisterSQLMigrations(set.FS)
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: migrate %s: %w", dialect, err)
	}
	return client, nil
}
