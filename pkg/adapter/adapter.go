// Package adapter provides the database adapter contract for dbdeck:
// one interface combining a dialect, a capability set, and a connection
// pool behind connect/execute/introspect operations, with concrete
// variants per family under pkg/adapters.
package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dbdeck/dbdeck/pkg/core"
	"github.com/dbdeck/dbdeck/pkg/dialect"
)

// Adapter is the per-family facade over one connected database. An
// adapter is constructed disconnected; Connect establishes the pool.
// Implementations are selected from core.Kind through the registry.
type Adapter interface {
	// Connect establishes the underlying network or file connection,
	// validates credentials, and initializes the pool. The secret is
	// the resolved credential for cfg.SecretRef; it is used for the
	// duration of this call only.
	Connect(ctx context.Context, cfg core.ConnectionConfig, secret string) error

	// Close releases every pooled connection. Idempotent.
	Close() error

	// Ping verifies the connection with a trivial round trip on a
	// checked-out handle.
	Ping(ctx context.Context) error

	// TestConnection is like Ping but never returns an error for a
	// reachable-but-erroring server; it reports false instead.
	TestConnection(ctx context.Context) bool

	// Pool returns the adapter's connection pool.
	Pool() *Pool

	// Dialect returns the adapter's SQL dialect.
	Dialect() dialect.Dialect

	// Kind returns the database family.
	Kind() core.Kind

	// ListTables fetches tables and views using the family catalog.
	ListTables(ctx context.Context, conn *Conn) ([]core.TableInfo, error)

	// GetColumns fetches normalized column descriptions for a table.
	GetColumns(ctx context.Context, conn *Conn, table string) ([]core.ColumnInfo, error)

	// GetIndexes fetches normalized index descriptions for a table.
	GetIndexes(ctx context.Context, conn *Conn, table string) ([]core.IndexInfo, error)

	// ServerMetadata fetches server version, database name and related
	// facts.
	ServerMetadata(ctx context.Context, conn *Conn) (core.ServerMetadata, error)
}

// SQLAdapter provides the common database/sql plumbing for adapters.
// Embed it in concrete implementations to get standard pool, close,
// ping and test-connection behavior.
type SQLAdapter struct {
	pool    *Pool
	dialect dialect.Dialect
	cfg     core.ConnectionConfig
	logger  *slog.Logger
}

// Init wires the embedded base after a successful driver open. The
// adapter takes ownership of db.
func (b *SQLAdapter) Init(db *sql.DB, cfg core.ConnectionConfig, d dialect.Dialect, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b.pool = NewPool(db, PoolConfig{
		MaxConns:       cfg.MaxConns,
		AcquireTimeout: cfg.AcquireTimeout,
		IdleTimeout:    cfg.IdleTimeout,
	}, logger)
	b.cfg = cfg
	b.dialect = d
	b.logger = logger
}

// Pool returns the connection pool, or nil before Connect.
func (b *SQLAdapter) Pool() *Pool {
	return b.pool
}

// Dialect returns the adapter's dialect.
func (b *SQLAdapter) Dialect() dialect.Dialect {
	return b.dialect
}

// Config returns the connection configuration in effect.
func (b *SQLAdapter) Config() core.ConnectionConfig {
	return b.cfg
}

// Logger returns the adapter's logger, never nil after Init.
func (b *SQLAdapter) Logger() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// Connected reports whether Connect has succeeded.
func (b *SQLAdapter) Connected() bool {
	return b.pool != nil
}

// Close releases the pool. Idempotent, safe before Connect.
func (b *SQLAdapter) Close() error {
	if b.pool == nil {
		return nil
	}
	return b.pool.Close()
}

// Ping runs SELECT 1 through a checked-out handle.
func (b *SQLAdapter) Ping(ctx context.Context) error {
	if b.pool == nil {
		return errors.New("database connection not established")
	}
	conn, err := b.pool.Checkout(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Release() }()

	var one int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// TestConnection reports whether a trivial round trip succeeds.
func (b *SQLAdapter) TestConnection(ctx context.Context) bool {
	return b.Ping(ctx) == nil
}
