// Package sqlite provides the SQLite database adapter, backed by the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // cgo-free sqlite driver

	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
	litedialect "github.com/dbdeck/dbdeck/pkg/dialects/sqlite"
)

func init() {
	adapter.Register(core.KindSQLite, func(logger *slog.Logger) adapter.Adapter {
		return New(logger)
	})
}

// Adapter implements adapter.Adapter for SQLite. The database field of
// the connection profile is the file path, or ":memory:" for an
// in-memory database.
type Adapter struct {
	adapter.SQLAdapter
	logger *slog.Logger
}

// New creates a disconnected SQLite adapter.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{logger: logger}
}

// Kind returns core.KindSQLite.
func (a *Adapter) Kind() core.Kind {
	return core.KindSQLite
}

// Connect opens the database file and enables foreign key enforcement.
// The secret is ignored; SQLite databases carry no credential.
func (a *Adapter) Connect(ctx context.Context, cfg core.ConnectionConfig, _ string) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.logger.Debug("opening sqlite database", slog.String("path", cfg.Database))

	db, err := sql.Open("sqlite", cfg.Database)
	if err != nil {
		return adapter.ClassifyConnectError(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return adapter.ClassifyConnectError(err)
	}
	if _, err := db.ExecContext(pingCtx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return adapter.ClassifyConnectError(err)
	}

	a.Init(db, cfg, litedialect.Dialect{}, a.logger)
	return nil
}

// ListTables returns user tables and views from sqlite_master,
// excluding the sqlite_ internal tables.
func (a *Adapter) ListTables(ctx context.Context, conn *adapter.Conn) ([]core.TableInfo, error) {
	const query = `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []core.TableInfo
	for rows.Next() {
		var t core.TableInfo
		var kind string
		if err := rows.Scan(&t.Name, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		t.Kind = core.TableKind(kind)
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetColumns returns normalized column descriptions via PRAGMA
// table_info. PRAGMA arguments cannot be bound, so the table name is
// quoted as an identifier.
func (a *Adapter) GetColumns(ctx context.Context, conn *adapter.Conn, table string) ([]core.ColumnInfo, error) {
	d := litedialect.Dialect{}
	query := fmt.Sprintf("PRAGMA table_info(%s)", d.QuoteIdentifier(table))

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.ColumnInfo
	for rows.Next() {
		var col core.ColumnInfo
		var cid, notNull, pk int
		var def sql.NullString
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &def, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = notNull == 0
		col.PrimaryKey = pk > 0
		if def.Valid {
			col.Default = &def.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// GetIndexes returns normalized index descriptions from PRAGMA
// index_list combined with the CREATE INDEX statements stored in
// sqlite_master. Auto-created indexes have no stored statement.
func (a *Adapter) GetIndexes(ctx context.Context, conn *adapter.Conn, table string) ([]core.IndexInfo, error) {
	definitions, err := indexDefinitions(ctx, conn, table)
	if err != nil {
		return nil, err
	}

	d := litedialect.Dialect{}
	query := fmt.Sprintf("PRAGMA index_list(%s)", d.QuoteIdentifier(table))
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query index metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var indexes []core.IndexInfo
	for rows.Next() {
		var idx core.IndexInfo
		var seq, unique, partial int
		var origin string
		if err := rows.Scan(&seq, &idx.Name, &unique, &origin, &partial); err != nil {
			return nil, fmt.Errorf("failed to scan index metadata: %w", err)
		}
		idx.Unique = unique == 1
		idx.Primary = origin == "pk" || strings.HasPrefix(idx.Name, "sqlite_autoindex_")
		idx.Definition = definitions[idx.Name]
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

// indexDefinitions maps index names to their CREATE INDEX statements.
func indexDefinitions(ctx context.Context, conn *adapter.Conn, table string) (map[string]string, error) {
	const query = `
		SELECT name, COALESCE(sql, '')
		FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ?`

	rows, err := conn.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query index definitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	defs := make(map[string]string)
	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return nil, fmt.Errorf("failed to scan index definition: %w", err)
		}
		defs[name] = def
	}
	return defs, rows.Err()
}

// ServerMetadata returns the library version, database path, file size
// and text encoding. Size and encoding are best-effort.
func (a *Adapter) ServerMetadata(ctx context.Context, conn *adapter.Conn) (core.ServerMetadata, error) {
	var meta core.ServerMetadata
	if err := conn.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&meta.Version); err != nil {
		return meta, fmt.Errorf("failed to query library version: %w", err)
	}
	meta.Version = "SQLite " + meta.Version
	meta.Database = a.Config().Database

	var pageCount, pageSize int64
	if err := conn.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := conn.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			meta.SizeBytes = pageCount * pageSize
		}
	}
	_ = conn.QueryRowContext(ctx, "PRAGMA encoding").Scan(&meta.Encoding)
	return meta, nil
}

var _ adapter.Adapter = (*Adapter)(nil)
