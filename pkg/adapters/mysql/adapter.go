// Package mysql provides the MySQL database adapter, backed by the
// go-sql-driver/mysql driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"

	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
	mydialect "github.com/dbdeck/dbdeck/pkg/dialects/mysql"
)

func init() {
	adapter.Register(core.KindMySQL, func(logger *slog.Logger) adapter.Adapter {
		return New(logger)
	})
}

// Adapter implements adapter.Adapter for MySQL.
type Adapter struct {
	adapter.SQLAdapter
	logger *slog.Logger
}

// New creates a disconnected MySQL adapter.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{logger: logger}
}

// Kind returns core.KindMySQL.
func (a *Adapter) Kind() core.Kind {
	return core.KindMySQL
}

// Connect establishes the connection pool and validates credentials.
func (a *Adapter) Connect(ctx context.Context, cfg core.ConnectionConfig, secret string) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	dsn := buildDSN(cfg, secret)
	a.logger.Debug("connecting to mysql",
		slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return adapter.ClassifyConnectError(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return adapter.ClassifyConnectError(err)
	}

	a.Init(db, cfg, mydialect.Dialect{}, a.logger)
	return nil
}

// buildDSN constructs a MySQL connection string via the driver's own
// config type.
func buildDSN(cfg core.ConnectionConfig, secret string) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = secret
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.Timeout = cfg.ConnectTimeout
	if tls := tlsConfigName(cfg.SSLMode); tls != "" {
		mc.TLSConfig = tls
	}
	return mc.FormatDSN()
}

// tlsConfigName maps the profile's ssl_mode onto the driver's tls
// parameter values.
func tlsConfigName(sslMode string) string {
	switch sslMode {
	case "", "disable":
		return ""
	case "require":
		return "skip-verify"
	case "verify-ca", "verify-full":
		return "true"
	default:
		return sslMode
	}
}

// ListTables returns tables and views of the connected database.
func (a *Adapter) ListTables(ctx context.Context, conn *adapter.Conn) ([]core.TableInfo, error) {
	const query = `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		ORDER BY table_name`

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []core.TableInfo
	for rows.Next() {
		var t core.TableInfo
		var tableType string
		if err := rows.Scan(&t.Name, &tableType); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		if tableType == "VIEW" {
			t.Kind = core.TableKindView
		} else {
			t.Kind = core.TableKindTable
		}
		t.Schema = a.Config().Database
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetColumns returns normalized column descriptions for a table.
func (a *Adapter) GetColumns(ctx context.Context, conn *adapter.Conn, table string) ([]core.ColumnInfo, error) {
	const query = `
		SELECT column_name, column_type, is_nullable, column_key, column_default
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`

	rows, err := conn.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.ColumnInfo
	for rows.Next() {
		var col core.ColumnInfo
		var nullable, key string
		var def sql.NullString
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &key, &def); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		col.PrimaryKey = key == "PRI"
		if def.Valid {
			col.Default = &def.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// GetIndexes returns normalized index descriptions for a table, one
// entry per index with its column list aggregated in order.
func (a *Adapter) GetIndexes(ctx context.Context, conn *adapter.Conn, table string) ([]core.IndexInfo, error) {
	const query = `
		SELECT
			index_name,
			MIN(index_type),
			MIN(non_unique),
			GROUP_CONCAT(column_name ORDER BY seq_in_index SEPARATOR ', ')
		FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = ?
		GROUP BY index_name
		ORDER BY index_name`

	rows, err := conn.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query index metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var indexes []core.IndexInfo
	for rows.Next() {
		var idx core.IndexInfo
		var indexType, columns string
		var nonUnique int
		if err := rows.Scan(&idx.Name, &indexType, &nonUnique, &columns); err != nil {
			return nil, fmt.Errorf("failed to scan index metadata: %w", err)
		}
		idx.Primary = idx.Name == "PRIMARY"
		idx.Unique = nonUnique == 0
		idx.Definition = fmt.Sprintf("%s (%s)", indexType, columns)
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

// ServerMetadata returns server version, database name, size and
// default character set. Size and encoding are best-effort.
func (a *Adapter) ServerMetadata(ctx context.Context, conn *adapter.Conn) (core.ServerMetadata, error) {
	var meta core.ServerMetadata
	if err := conn.QueryRowContext(ctx, "SELECT VERSION()").Scan(&meta.Version); err != nil {
		return meta, fmt.Errorf("failed to query server version: %w", err)
	}
	if err := conn.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&meta.Database); err != nil {
		return meta, fmt.Errorf("failed to query database name: %w", err)
	}
	_ = conn.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(data_length + index_length), 0)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()`).Scan(&meta.SizeBytes)
	_ = conn.QueryRowContext(ctx, `
		SELECT default_character_set_name
		FROM information_schema.schemata
		WHERE schema_name = DATABASE()`).Scan(&meta.Encoding)
	return meta, nil
}

var _ adapter.Adapter = (*Adapter)(nil)
