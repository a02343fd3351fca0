// Package sqlite provides the SQLite SQL dialect definition.
// Pure Go, no driver dependencies.
package sqlite

import (
	"fmt"

	"github.com/dbdeck/dbdeck/pkg/core"
	"github.com/dbdeck/dbdeck/pkg/dialect"
)

func init() {
	dialect.Register(Dialect{})
}

// Dialect implements dialect.Dialect for SQLite.
type Dialect struct{}

// Kind returns core.KindSQLite.
func (Dialect) Kind() core.Kind {
	return core.KindSQLite
}

// QuoteIdentifier wraps name in double quotes, doubling embedded ones.
func (Dialect) QuoteIdentifier(name string) string {
	return dialect.QuoteWith(name, `"`)
}

// BooleanLiteral renders 1 or 0; SQLite has no boolean type.
func (Dialect) BooleanLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// LimitClause renders LIMIT/OFFSET. An offset without a limit emits
// "LIMIT -1 OFFSET m"; SQLite treats a negative limit as unbounded.
func (Dialect) LimitClause(limit, offset int) string {
	switch {
	case limit >= 0 && offset >= 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit >= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset >= 0:
		return fmt.Sprintf("LIMIT -1 OFFSET %d", offset)
	default:
		return ""
	}
}

// StringConcat uses the || operator.
func (Dialect) StringConcat(a, b string) string {
	return a + " || " + b
}

// CaseInsensitiveLike returns LIKE; SQLite LIKE is case-insensitive
// for ASCII by default.
func (Dialect) CaseInsensitiveLike() string {
	return "LIKE"
}

// DateLiteral renders a plain quoted literal.
func (Dialect) DateLiteral(iso string) string {
	return fmt.Sprintf("'%s'", dialect.EscapeLiteral(iso))
}

// DatetimeLiteral renders a plain quoted literal.
func (Dialect) DatetimeLiteral(iso string) string {
	return fmt.Sprintf("'%s'", dialect.EscapeLiteral(iso))
}

// CurrentTimestamp returns CURRENT_TIMESTAMP.
func (Dialect) CurrentTimestamp() string {
	return "CURRENT_TIMESTAMP"
}

// AutoIncrementType returns INTEGER PRIMARY KEY AUTOINCREMENT.
func (Dialect) AutoIncrementType() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// QualifiedTableName ignores schema; SQLite has no schema support.
func (d Dialect) QualifiedTableName(_, table string) string {
	return d.QuoteIdentifier(table)
}

// Capabilities returns the SQLite feature matrix.
func (Dialect) Capabilities() dialect.Capabilities {
	return dialect.Capabilities{
		Schemas:             false,
		Returning:           true,
		Upsert:              dialect.UpsertOnConflict,
		Views:               true,
		MaterializedViews:   false,
		PartialIndexes:      true,
		JSON:                true,
		Arrays:              false,
		FullTextSearch:      true,
		Savepoints:          true,
		MaxIdentifierLength: 0,
	}
}

var _ dialect.Dialect = Dialect{}
