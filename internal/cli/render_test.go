package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbdeck/dbdeck/pkg/core"
)

func rowsResult() core.StatementResult {
	return core.NewRowsResult(
		[]core.ColumnDescriptor{{Name: "id"}, {Name: "note"}},
		[]core.Row{
			{"id": core.StringValue("1"), "note": core.StringValue("hello, world")},
			{"id": core.StringValue("2"), "note": core.NullValue()},
		})
}

func TestRenderStatementTable(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, renderStatement(&buf, rowsResult(), "table"))

	out := buf.String()
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "hello, world")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestRenderStatementJSON(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, renderStatement(&buf, rowsResult(), "json"))

	out := buf.String()
	assert.Contains(t, out, `"note": "hello, world"`)
	assert.Contains(t, out, `"note": null`)
}

func TestRenderStatementCSV(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, renderStatement(&buf, rowsResult(), "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,note", lines[0])
	assert.Equal(t, `1,"hello, world"`, lines[1])
}

func TestRenderCommand(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, renderStatement(&buf, core.NewCommandResult(3), "table"))
	assert.Equal(t, "OK (3 rows affected)\n", buf.String())
}

func TestRenderBatchFailure(t *testing.T) {
	var buf strings.Builder
	result := core.MultiStatementResult{
		Statements:  []core.StatementResult{core.NewCommandResult(1)},
		FailedIndex: 1,
		Err:         core.NewQueryError(core.QuerySyntax, assert.AnError),
	}

	err := renderBatch(&buf, result, "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2 failed")
	assert.Contains(t, buf.String(), "OK (1 rows affected)")
}

func TestRenderEmptyRowSet(t *testing.T) {
	var buf strings.Builder
	res := core.NewRowsResult([]core.ColumnDescriptor{{Name: "id"}}, nil)
	require.NoError(t, renderStatement(&buf, res, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())
}
