// Package store implements the SQL persistence layer for todos. It owns the
// todos table and every encoding decision at the storage boundary: UUID ids,
// fixed-width UTC timestamps, nullable descriptions, and 0/1 completion flags.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// DatabaseFile is the SQLite file created inside the data directory.
const DatabaseFile = "todos.db"

// SQLite pragmas that make concurrent writers wait for the lock instead of
// failing with SQLITE_BUSY.
const (
	pragmaBusyTimeout = "_pragma=busy_timeout(5000)"
	pragmaWAL         = "_pragma=journal_mode(WAL)"
)

// Compile-time interface check.
var _ types.TodoStore = (*Backend)(nil)

// Backend implements types.TodoStore over a database/sql connection pool.
// Every operation runs a single statement on one pooled connection.
type Backend struct {
	db      *sql.DB
	config  types.Config
	dialect dialect

	now   func() time.Time
	newID func() string
}

// Open validates config, opens the pool, and ensures the schema exists.
// Creating the schema is idempotent, so Open may be called against an
// existing database any number of times.
func Open(ctx context.Context, config types.Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d, dsn, err := dataSource(config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", config.Driver, err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}

	b := &Backend{
		db:      db,
		config:  config,
		dialect: d,
		now:     time.Now,
		newID:   uuid.NewString,
	}

	if err := b.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := b.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// dataSource picks the database/sql driver and DSN for config. For SQLite
// without an explicit DSN the data directory is created if needed.
func dataSource(config types.Config) (dialect, string, error) {
	switch config.Driver {
	case types.DriverPostgres:
		return postgresDialect, config.DSN, nil
	default:
		if config.DSN != "" {
			return sqliteDialect, sqliteDSN(config.DSN), nil
		}
		if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
			return dialect{}, "", fmt.Errorf("creating data dir: %w", err)
		}
		path := filepath.Join(config.DataDir, DatabaseFile)
		return sqliteDialect, sqliteDSN("file:" + path), nil
	}
}

// sqliteDSN adds the busy timeout, and WAL for on-disk databases, unless the
// DSN already sets those pragmas itself.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "_pragma=busy_timeout") {
		params = append(params, pragmaBusyTimeout)
	}
	inMemory := strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
	if !inMemory && !strings.Contains(dsn, "_pragma=journal_mode") {
		params = append(params, pragmaWAL)
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func (b *Backend) initSchema(ctx context.Context) error {
	ctx, cancel := b.opContext(ctx)
	defer cancel()

	for _, stmt := range schemaDDL {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return unavailable("creating schema", err)
		}
	}
	return nil
}

// Ping checks that the backend is reachable within the acquire timeout.
func (b *Backend) Ping(ctx context.Context) error {
	ctx, cancel := b.opContext(ctx)
	defer cancel()

	if err := b.db.PingContext(ctx); err != nil {
		return unavailable("pinging database", err)
	}
	return nil
}

// Close releases the pool. Operations after Close fail with
// ErrStorageUnavailable.
func (b *Backend) Close() error {
	return b.db.Close()
}

// opContext bounds a single operation, including the wait for a pooled
// connection, by the configured acquire timeout.
func (b *Backend) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.config.AcquireTimeout > 0 {
		return context.WithTimeout(ctx, b.config.AcquireTimeout)
	}
	return context.WithCancel(ctx)
}

// unavailable wraps a driver or pool failure as ErrStorageUnavailable while
// keeping the cause in the chain for logging.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrStorageUnavailable, err)
}
