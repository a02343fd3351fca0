// Package mysql provides the MySQL SQL dialect definition.
// Pure Go, no driver dependencies.
package mysql

import (
	"fmt"

	"github.com/dbdeck/dbdeck/pkg/core"
	"github.com/dbdeck/dbdeck/pkg/dialect"
)

func init() {
	dialect.Register(Dialect{})
}

// maxLimit is the sentinel emitted when an OFFSET is requested without
// a LIMIT; MySQL requires a LIMIT whenever OFFSET is present. The value
// is the documented "all remaining rows" idiom from the MySQL manual.
const maxLimit = "18446744073709551615"

// Dialect implements dialect.Dialect for MySQL.
type Dialect struct{}

// Kind returns core.KindMySQL.
func (Dialect) Kind() core.Kind {
	return core.KindMySQL
}

// QuoteIdentifier wraps name in backticks, doubling embedded ones.
func (Dialect) QuoteIdentifier(name string) string {
	return dialect.QuoteWith(name, "`")
}

// BooleanLiteral renders 1 or 0.
func (Dialect) BooleanLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// LimitClause renders LIMIT/OFFSET. An offset without a limit emits the
// sentinel limit because MySQL rejects a bare OFFSET.
func (Dialect) LimitClause(limit, offset int) string {
	switch {
	case limit >= 0 && offset >= 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit >= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset >= 0:
		return fmt.Sprintf("LIMIT %s OFFSET %d", maxLimit, offset)
	default:
		return ""
	}
}

// StringConcat uses the CONCAT function.
func (Dialect) StringConcat(a, b string) string {
	return fmt.Sprintf("CONCAT(%s, %s)", a, b)
}

// CaseInsensitiveLike returns LIKE; MySQL collations are
// case-insensitive by default.
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

// AutoIncrementType returns INT AUTO_INCREMENT.
func (Dialect) AutoIncrementType() string {
	return "INT AUTO_INCREMENT"
}

// QualifiedTableName renders `schema`.`table` when a schema is given.
func (d Dialect) QualifiedTableName(schema, table string) string {
	if schema != "" {
		return d.QuoteIdentifier(schema) + "." + d.QuoteIdentifier(table)
	}
	return d.QuoteIdentifier(table)
}

// Capabilities returns the MySQL feature matrix.
func (Dialect) Capabilities() dialect.Capabilities {
	return dialect.Capabilities{
		Schemas:             true,
		Returning:           false,
		Upsert:              dialect.UpsertOnDuplicateKey,
		Views:               true,
		MaterializedViews:   false,
		PartialIndexes:      false,
		JSON:                true,
		Arrays:              false,
		FullTextSearch:      true,
		Savepoints:          true,
		MaxIdentifierLength: 64,
	}
}

var _ dialect.Dialect = Dialect{}
