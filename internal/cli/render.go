package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dbdeck/dbdeck/pkg/core"
)

// renderBatch writes every result of a batch, then the failure if the
// batch stopped early.
func renderBatch(w io.Writer, result core.MultiStatementResult, format string) error {
	for i, res := range result.Statements {
		if len(result.Statements) > 1 && format == "table" {
			_, _ = fmt.Fprintf(w, "-- statement %d --\n", i+1)
		}
		if err := renderStatement(w, res, format); err != nil {
			return err
		}
	}
	if result.Failed() {
		if result.FailedIndex >= 0 {
			return fmt.Errorf("statement %d failed: %w", result.FailedIndex+1, result.Err)
		}
		return result.Err
	}
	return nil
}

// renderStatement writes one statement result in the selected format.
func renderStatement(w io.Writer, res core.StatementResult, format string) error {
	if res.Kind == core.StatementCommand {
		_, _ = fmt.Fprintf(w, "OK (%d rows affected)\n", res.RowsAffected)
		return nil
	}

	cols := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		cols[i] = c.Name
	}
	rows := make([][]string, len(res.Rows))
	for i, row := range res.Rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = row[c].String()
		}
		rows[i] = cells
	}

	switch format {
	case "json":
		return renderRowsJSON(w, res)
	case "csv":
		return renderCSV(w, cols, rows)
	default:
		renderTable(w, cols, rows)
		return nil
	}
}

// renderTable writes a header and rows as a bordered table.
func renderTable(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, cells := range rows {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// renderRowsJSON writes a row set as a JSON array of objects, with SQL
// NULL rendered as JSON null.
func renderRowsJSON(w io.Writer, res core.StatementResult) error {
	out := make([]map[string]any, len(res.Rows))
	for i, row := range res.Rows {
		obj := make(map[string]any, len(res.Columns))
		for _, c := range res.Columns {
			v := row[c.Name]
			if v.IsNull() {
				obj[c.Name] = nil
			} else {
				obj[c.Name] = v.Text
			}
		}
		out[i] = obj
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderCSV(w io.Writer, cols []string, rows [][]string) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))
	for _, cells := range rows {
		escaped := make([]string, len(cells))
		for i, cell := range cells {
			escaped[i] = escapeCSV(cell)
		}
		_, _ = fmt.Fprintln(w, strings.Join(escaped, ","))
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
