// Package executor runs free-form SQL text against a checked-out
// connection: it splits the text into statements, executes them in
// order, normalizes every result, and stops at the first failure.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
	"github.com/dbdeck/dbdeck/pkg/sqlsplit"
)

// rowKeywords classify statements whose leading keyword produces a row
// set. Anything else is treated as a command unless it carries a
// RETURNING clause.
var rowKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"VALUES":   true,
	"TABLE":    true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
	"PRAGMA":   true,
}

// Executor executes SQL batches. It is stateless and safe for
// concurrent use; the per-call connection carries all state.
type Executor struct {
	logger *slog.Logger
}

// New creates an executor. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{logger: logger}
}

// Execute splits sqlText and runs each statement in order on conn.
// Execution is fail-fast: the first error stops the batch, results of
// already completed statements are preserved, and later statements are
// never attempted. A cancelled context marks the connection broken so
// the pool discards it instead of reusing a handle whose server side
// may still be mid-statement.
func (e *Executor) Execute(ctx context.Context, conn *adapter.Conn, sqlText string) core.MultiStatementResult {
	statements := sqlsplit.Split(sqlText)
	result := core.MultiStatementResult{FailedIndex: -1}
	if len(statements) == 0 {
		return result
	}

	for i, stmt := range statements {
		start := time.Now()
		res, err := e.executeOne(ctx, conn, stmt)
		if err != nil {
			qerr := adapter.ClassifyQueryError(ctx, err)
			if qerr.Kind == core.QueryCancelled {
				conn.MarkBroken()
			}
			e.logger.Debug("statement failed",
				slog.Int("index", i), slog.String("kind", string(qerr.Kind)))
			result.FailedIndex = i
			result.Err = qerr
			return result
		}
		e.logger.Debug("statement executed",
			slog.Int("index", i),
			slog.String("kind", string(res.Kind)),
			slog.Duration("elapsed", time.Since(start)))
		result.Statements = append(result.Statements, res)
	}
	return result
}

// executeOne runs a single statement through the query or exec path
// depending on its result shape.
func (e *Executor) executeOne(ctx context.Context, conn *adapter.Conn, stmt string) (core.StatementResult, error) {
	if returnsRows(stmt) {
		return e.queryRows(ctx, conn, stmt)
	}

	res, err := conn.ExecContext(ctx, stmt)
	if err != nil {
		return core.StatementResult{}, err
	}
	// Not every driver reports affected rows for DDL.
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return core.NewCommandResult(affected), nil
}

// queryRows executes a row-producing statement and materializes the
// full result set.
func (e *Executor) queryRows(ctx context.Context, conn *adapter.Conn, stmt string) (core.StatementResult, error) {
	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return core.StatementResult{}, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := describeColumns(rows)
	if err != nil {
		return core.StatementResult{}, err
	}

	var out []core.Row
	scan := make([]any, len(columns))
	for i := range scan {
		scan[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return core.StatementResult{}, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(core.Row, len(columns))
		for i, col := range columns {
			row[col.Name] = normalizeValue(*scan[i].(*any))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return core.StatementResult{}, err
	}
	return core.NewRowsResult(columns, out), nil
}

// describeColumns extracts ordered column descriptors from a result.
func describeColumns(rows *sql.Rows) ([]core.ColumnDescriptor, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to describe result columns: %w", err)
	}
	columns := make([]core.ColumnDescriptor, len(types))
	for i, ct := range types {
		columns[i] = core.ColumnDescriptor{
			Name:         ct.Name(),
			DeclaredType: ct.DatabaseTypeName(),
		}
	}
	return columns, nil
}

// returnsRows classifies a statement by its leading keyword, with a
// RETURNING clause promoting DML to the row-producing path.
func returnsRows(stmt string) bool {
	keyword := sqlsplit.LeadingKeyword(stmt)
	if rowKeywords[keyword] {
		return true
	}
	switch keyword {
	case "INSERT", "UPDATE", "DELETE":
		return sqlsplit.ContainsKeyword(stmt, "RETURNING")
	}
	return false
}

// normalizeValue renders a driver value as a display string, keeping
// NULL distinguished from the empty string.
func normalizeValue(v any) core.Value {
	switch val := v.(type) {
	case nil:
		return core.NullValue()
	case []byte:
		return core.StringValue(string(val))
	case string:
		return core.StringValue(val)
	case time.Time:
		return core.StringValue(val.Format(time.RFC3339Nano))
	case bool:
		return core.StringValue(strconv.FormatBool(val))
	case int64:
		return core.StringValue(strconv.FormatInt(val, 10))
	case float64:
		return core.StringValue(strconv.FormatFloat(val, 'g', -1, 64))
	default:
		return core.StringValue(fmt.Sprintf("%v", val))
	}
}
