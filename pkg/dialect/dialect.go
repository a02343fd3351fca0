// Package dialect defines the SQL dialect contract: pure, stateless
// fragment generators for each database family, plus the static
// capability matrix consulted before optional syntax is emitted.
//
// Dialect implementations are pure Go with no driver dependencies and
// are safe for concurrent use. Family packages register themselves in
// their init() functions (see pkg/dialects).
package dialect

import (
	"fmt"
	"strings"

	"github.com/dbdeck/dbdeck/pkg/core"
)

// NoLimit and NoOffset mark an absent limit or offset argument to
// LimitClause.
const (
	NoLimit  = -1
	NoOffset = -1
)

// Dialect translates abstract SQL fragments into family-correct text.
// Implementations hold no state and perform no I/O.
type Dialect interface {
	// Kind returns the database family this dialect serves.
	Kind() core.Kind

	// QuoteIdentifier wraps name in the family's identifier quote
	// character, doubling any embedded quote character. The result is
	// always parsed as exactly one identifier; this is the primary
	// injection defense for identifiers.
	QuoteIdentifier(name string) string

	// BooleanLiteral renders a boolean constant.
	BooleanLiteral(v bool) string

	// LimitClause renders a LIMIT/OFFSET clause. Negative arguments
	// (NoLimit, NoOffset) mean absent; both absent yields "".
	LimitClause(limit, offset int) string

	// StringConcat renders concatenation of two expressions.
	StringConcat(a, b string) string

	// CaseInsensitiveLike returns the case-insensitive LIKE operator.
	CaseInsensitiveLike() string

	// DateLiteral and DatetimeLiteral render ISO date/datetime text as
	// a typed literal.
	DateLiteral(iso string) string
	DatetimeLiteral(iso string) string

	// CurrentTimestamp returns the current-timestamp expression.
	CurrentTimestamp() string

	// AutoIncrementType returns the column definition fragment for an
	// auto-incrementing integer primary key.
	AutoIncrementType() string

	// QualifiedTableName renders an optionally schema-qualified table
	// reference. Families without schema support ignore schema.
	QualifiedTableName(schema, table string) string

	// Capabilities returns the family's static feature matrix.
	Capabilities() Capabilities
}

// QuoteWith implements identifier quoting with the given quote
// character, doubling embedded occurrences so the result can never
// break out of the identifier.
func QuoteWith(name string, quote string) string {
	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

// EscapeLiteral doubles single quotes in s for embedding inside a
// single-quoted SQL string literal.
func EscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// IsNull renders a NULL check for the given column expression.
func IsNull(column string) string {
	return column + " IS NULL"
}

// IsNotNull renders a NOT NULL check for the given column expression.
func IsNotNull(column string) string {
	return column + " IS NOT NULL"
}

// Cast renders an ANSI CAST expression.
func Cast(expr, dataType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, dataType)
}

// BuildSelect renders a preview SELECT for a table using the dialect's
// quoting and limit rules.
func BuildSelect(d Dialect, schema, table string, limit, offset int) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(d.QualifiedTableName(schema, table))
	if clause := d.LimitClause(limit, offset); clause != "" {
		b.WriteString(" ")
		b.WriteString(clause)
	}
	return b.String()
}
