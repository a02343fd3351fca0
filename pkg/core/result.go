package core

// Value is one cell of a result set. A SQL NULL is represented by
// Valid == false, distinct from an empty string.
type Value struct {
	Text  string
	Valid bool
}

// NullValue returns the distinguished NULL marker.
func NullValue() Value {
	return Value{}
}

// StringValue returns a non-NULL value holding s.
func StringValue(s string) Value {
	return Value{Text: s, Valid: true}
}

// IsNull reports whether the value is a SQL NULL.
func (v Value) IsNull() bool {
	return !v.Valid
}

// String renders the value for display; NULL renders as "NULL".
func (v Value) String() string {
	if !v.Valid {
		return "NULL"
	}
	return v.Text
}

// Row maps column names to values. Column order is carried by the
// enclosing StatementResult's Columns slice.
type Row map[string]Value

// ColumnDescriptor describes one result column. Order within a result
// is significant (display order).
type ColumnDescriptor struct {
	Name         string
	DeclaredType string
}

// StatementKind tags the shape of a StatementResult.
type StatementKind string

// Statement result shapes.
const (
	StatementRows    StatementKind = "rows"
	StatementCommand StatementKind = "command"
)

// StatementResult is the normalized outcome of one statement: either a
// row set (queries) or an affected-row count (DDL/DML).
type StatementResult struct {
	Kind         StatementKind
	Columns      []ColumnDescriptor
	Rows         []Row
	RowsAffected int64
}

// NewRowsResult builds a Rows-shaped result.
func NewRowsResult(columns []ColumnDescriptor, rows []Row) StatementResult {
	return StatementResult{Kind: StatementRows, Columns: columns, Rows: rows}
}

// NewCommandResult builds a Command-shaped result.
func NewCommandResult(rowsAffected int64) StatementResult {
	return StatementResult{Kind: StatementCommand, RowsAffected: rowsAffected}
}

// MultiStatementResult is the ordered, fail-fast outcome of a batch.
// Statements holds one result per successfully executed statement in
// submission order. On failure, FailedIndex is the 0-based index of the
// first failing statement and Err describes it; statements after the
// failure were never attempted. FailedIndex is -1 when Err is nil, and
// also -1 when the batch failed before any statement ran (for example a
// pool checkout timeout).
type MultiStatementResult struct {
	Statements  []StatementResult
	FailedIndex int
	Err         error
}

// Failed reports whether the batch terminated with an error.
func (r MultiStatementResult) Failed() bool {
	return r.Err != nil
}
