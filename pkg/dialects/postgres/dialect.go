// Package postgres provides the PostgreSQL SQL dialect definition.
// This package is pure Go with no database driver dependencies, making
// it usable by tools that need dialect information without the overhead
// of database connections.
package postgres

import (
	"fmt"

	"github.com/dbdeck/dbdeck/pkg/core"
	"github.com/dbdeck/dbdeck/pkg/dialect"
)

func init() {
	dialect.Register(Dialect{})
}

// Dialect implements dialect.Dialect for PostgreSQL.
type Dialect struct{}

// Kind returns core.KindPostgres.
func (Dialect) Kind() core.Kind {
	return core.KindPostgres
}

// QuoteIdentifier wraps name in double quotes, doubling embedded ones.
func (Dialect) QuoteIdentifier(name string) string {
	return dialect.QuoteWith(name, `"`)
}

// BooleanLiteral renders TRUE or FALSE.
func (Dialect) BooleanLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// LimitClause renders LIMIT/OFFSET. PostgreSQL accepts a bare OFFSET,
// so an offset without a limit is emitted as "OFFSET m".
func (Dialect) LimitClause(limit, offset int) string {
	switch {
	case limit >= 0 && offset >= 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit >= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset >= 0:
		return fmt.Sprintf("OFFSET %d", offset)
	default:
		return ""
	}
}

// StringConcat uses the || operator.
func (Dialect) StringConcat(a, b string) string {
	return a + " || " + b
}

// CaseInsensitiveLike returns ILIKE.
func (Dialect) CaseInsensitiveLike() string {
	return "ILIKE"
}

// DateLiteral renders a typed DATE literal.
func (Dialect) DateLiteral(iso string) string {
	return fmt.Sprintf("DATE '%s'", dialect.EscapeLiteral(iso))
}

// DatetimeLiteral renders a typed TIMESTAMP literal.
func (Dialect) DatetimeLiteral(iso string) string {
	return fmt.Sprintf("TIMESTAMP '%s'", dialect.EscapeLiteral(iso))
}

// CurrentTimestamp returns CURRENT_TIMESTAMP.
func (Dialect) CurrentTimestamp() string {
	return "CURRENT_TIMESTAMP"
}

// AutoIncrementType returns SERIAL.
func (Dialect) AutoIncrementType() string {
	return "SERIAL"
}

// QualifiedTableName renders "schema"."table" when a schema is given.
func (d Dialect) QualifiedTableName(schema, table string) string {
	if schema != "" {
		return d.QuoteIdentifier(schema) + "." + d.QuoteIdentifier(table)
	}
	return d.QuoteIdentifier(table)
}

// Capabilities returns the PostgreSQL feature matrix.
func (Dialect) Capabilities() dialect.Capabilities {
	return dialect.Capabilities{
		Schemas:             true,
		Returning:           true,
		Upsert:              dialect.UpsertOnConflict,
		Views:               true,
		MaterializedViews:   true,
		PartialIndexes:      true,
		JSON:                true,
		Arrays:              true,
		FullTextSearch:      true,
		Savepoints:          true,
		MaxIdentifierLength: 63,
	}
}

var _ dialect.Dialect = Dialect{}
