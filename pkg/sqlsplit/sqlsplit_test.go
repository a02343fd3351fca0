package sqlsplit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single statement",
			input: "SELECT 1",
			want:  []string{"SELECT 1"},
		},
		{
			name:  "two statements",
			input: "SELECT 1; SELECT 2",
			want:  []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:  "trailing semicolon",
			input: "SELECT 1;",
			want:  []string{"SELECT 1"},
		},
		{
			name:  "semicolon inside string literal",
			input: "SELECT ';' AS x; SELECT 2",
			want:  []string{"SELECT ';' AS x", "SELECT 2"},
		},
		{
			name:  "escaped quote inside string",
			input: "SELECT 'it''s; fine'; SELECT 2",
			want:  []string{"SELECT 'it''s; fine'", "SELECT 2"},
		},
		{
			name:  "backslash escape inside string",
			input: `SELECT 'a\';b'; SELECT 2`,
			want:  []string{`SELECT 'a\';b'`, "SELECT 2"},
		},
		{
			name:  "semicolon inside quoted identifier",
			input: `SELECT "odd;name" FROM t; SELECT 2`,
			want:  []string{`SELECT "odd;name" FROM t`, "SELECT 2"},
		},
		{
			name:  "semicolon inside backtick identifier",
			input: "SELECT `odd;name` FROM t; SELECT 2",
			want:  []string{"SELECT `odd;name` FROM t", "SELECT 2"},
		},
		{
			name:  "semicolon in line comment",
			input: "SELECT 1 -- trailing; comment\n; SELECT 2",
			want:  []string{"SELECT 1 -- trailing; comment", "SELECT 2"},
		},
		{
			name:  "semicolon in block comment",
			input: "SELECT /* not; here */ 1; SELECT 2",
			want:  []string{"SELECT /* not; here */ 1", "SELECT 2"},
		},
		{
			name:  "nested block comment",
			input: "SELECT /* outer /* inner; */ still; */ 1; SELECT 2",
			want:  []string{"SELECT /* outer /* inner; */ still; */ 1", "SELECT 2"},
		},
		{
			name:  "dollar quoted body",
			input: "CREATE FUNCTION f() RETURNS void AS $$ BEGIN; END $$ LANGUAGE plpgsql; SELECT 1",
			want: []string{
				"CREATE FUNCTION f() RETURNS void AS $$ BEGIN; END $$ LANGUAGE plpgsql",
				"SELECT 1",
			},
		},
		{
			name:  "tagged dollar quote",
			input: "SELECT $tag$a;b$tag$; SELECT 2",
			want:  []string{"SELECT $tag$a;b$tag$", "SELECT 2"},
		},
		{
			name:  "comment only input",
			input: "-- nothing here\n/* or here */",
			want:  nil,
		},
		{
			name:  "empty statements dropped",
			input: ";;  ;SELECT 1;;",
			want:  []string{"SELECT 1"},
		},
		{
			name:  "whitespace only",
			input: "   \n\t  ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.input))
		})
	}
}

func TestLeadingKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SELECT 1", "SELECT"},
		{"select 1", "SELECT"},
		{"  WITH cte AS (SELECT 1) SELECT * FROM cte", "WITH"},
		{"-- comment\nINSERT INTO t VALUES (1)", "INSERT"},
		{"/* comment */ UPDATE t SET a = 1", "UPDATE"},
		{"(SELECT 1)", "SELECT"},
		{"PRAGMA table_info(t)", "PRAGMA"},
		{"", ""},
		{"-- only a comment", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LeadingKeyword(tt.input), "input: %q", tt.input)
	}
}

func TestContainsKeyword(t *testing.T) {
	tests := []struct {
		input string
		word  string
		want  bool
	}{
		{"INSERT INTO t VALUES (1) RETURNING id", "RETURNING", true},
		{"insert into t values (1) returning *", "RETURNING", true},
		{"INSERT INTO t VALUES ('RETURNING')", "RETURNING", false},
		{"SELECT returning_flag FROM t", "RETURNING", false},
		{"UPDATE t SET a = 1 -- RETURNING\n", "RETURNING", false},
		{`SELECT "RETURNING" FROM t`, "RETURNING", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsKeyword(tt.input, tt.word), "input: %q", tt.input)
	}
}
