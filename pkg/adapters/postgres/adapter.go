// Package postgres provides the PostgreSQL database adapter, backed by
// the pgx driver through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
	"github.com/dbdeck/dbdeck/pkg/dialect"
	pgdialect "github.com/dbdeck/dbdeck/pkg/dialects/postgres"
)

func init() {
	adapter.Register(core.KindPostgres, func(logger *slog.Logger) adapter.Adapter {
		return New(logger)
	})
}

// Adapter implements adapter.Adapter for PostgreSQL.
type Adapter struct {
	adapter.SQLAdapter
	logger *slog.Logger
}

// New creates a disconnected PostgreSQL adapter.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{logger: logger}
}

// Kind returns core.KindPostgres.
func (a *Adapter) Kind() core.Kind {
	return core.KindPostgres
}

// Connect establishes the connection pool and validates credentials.
func (a *Adapter) Connect(ctx context.Context, cfg core.ConnectionConfig, secret string) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	dsn := buildDSN(cfg, secret)
	a.logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return adapter.ClassifyConnectError(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return adapter.ClassifyConnectError(err)
	}

	a.Init(db, cfg, pgdialect.Dialect{}, a.logger)
	return nil
}

// buildDSN constructs a key=value PostgreSQL connection string.
func buildDSN(cfg core.ConnectionConfig, secret string) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, sslmode)
	if cfg.Username != "" {
		dsn += " user=" + cfg.Username
	}
	if secret != "" {
		dsn += " password=" + secret
	}
	return dsn
}

// ListTables returns user tables and views, excluding system schemas.
func (a *Adapter) ListTables(ctx context.Context, conn *adapter.Conn) ([]core.TableInfo, error) {
	const query = `
		SELECT schemaname, tablename, 'table' AS kind
		FROM pg_tables
		WHERE schemaname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		UNION ALL
		SELECT schemaname, viewname, 'view' AS kind
		FROM pg_views
		WHERE schemaname NOT IN ('pg_catalog', 'information_schema')
		ORDER BY 1, 2`

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []core.TableInfo
	for rows.Next() {
		var t core.TableInfo
		var kind string
		if err := rows.Scan(&t.Schema, &t.Name, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		t.Kind = core.TableKind(kind)
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetColumns returns normalized column descriptions for a table.
func (a *Adapter) GetColumns(ctx context.Context, conn *adapter.Conn, table string) ([]core.ColumnInfo, error) {
	const query = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			pk.column_name IS NOT NULL AS is_primary
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_name = $1
		) pk ON pk.column_name = c.column_name
		WHERE c.table_name = $1
		ORDER BY c.ordinal_position`

	rows, err := conn.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.ColumnInfo
	for rows.Next() {
		var col core.ColumnInfo
		var nullable string
		var def sql.NullString
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &def, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		if def.Valid {
			col.Default = &def.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// GetIndexes returns normalized index descriptions for a table.
func (a *Adapter) GetIndexes(ctx context.Context, conn *adapter.Conn, table string) ([]core.IndexInfo, error) {
	const query = `
		SELECT
			i.indexname,
			i.indexdef,
			i.indexname LIKE '%_pkey' AS is_primary,
			i.indexdef LIKE '%UNIQUE%' AS is_unique,
			COALESCE(pg_size_pretty(pg_relation_size(c.oid)), '') AS size
		FROM pg_indexes i
		LEFT JOIN pg_class c ON c.relname = i.indexname
		WHERE i.tablename = $1
		ORDER BY i.indexname`

	rows, err := conn.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query index metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var indexes []core.IndexInfo
	for rows.Next() {
		var idx core.IndexInfo
		if err := rows.Scan(&idx.Name, &idx.Definition, &idx.Primary, &idx.Unique, &idx.Size); err != nil {
			return nil, fmt.Errorf("failed to scan index metadata: %w", err)
		}
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

// ServerMetadata returns server version, database name, size and
// encoding. Size and encoding are best-effort.
func (a *Adapter) ServerMetadata(ctx context.Context, conn *adapter.Conn) (core.ServerMetadata, error) {
	var meta core.ServerMetadata
	if err := conn.QueryRowContext(ctx, "SELECT version()").Scan(&meta.Version); err != nil {
		return meta, fmt.Errorf("failed to query server version: %w", err)
	}
	if err := conn.QueryRowContext(ctx, "SELECT current_database()").Scan(&meta.Database); err != nil {
		return meta, fmt.Errorf("failed to query database name: %w", err)
	}
	// Keep only the product and version part of the banner.
	if i := strings.Index(meta.Version, " on "); i > 0 {
		meta.Version = meta.Version[:i]
	}
	_ = conn.QueryRowContext(ctx, "SELECT pg_database_size(current_database())").Scan(&meta.SizeBytes)
	_ = conn.QueryRowContext(ctx,
		"SELECT pg_encoding_to_char(encoding) FROM pg_database WHERE datname = current_database()").
		Scan(&meta.Encoding)
	return meta, nil
}

var (
	_ adapter.Adapter = (*Adapter)(nil)
	_ dialect.Dialect = pgdialect.Dialect{}
)
