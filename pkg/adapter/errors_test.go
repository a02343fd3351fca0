package adapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
)

func TestClassifyConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want core.ConnectionErrorKind
	}{
		{
			name: "postgres auth failure",
			err:  &pgconn.PgError{Code: "28P01", Message: "password authentication failed"},
			want: core.ConnAuth,
		},
		{
			name: "postgres other failure",
			err:  &pgconn.PgError{Code: "3D000", Message: "database does not exist"},
			want: core.ConnNetwork,
		},
		{
			name: "mysql access denied",
			err:  &mysql.MySQLError{Number: 1045, Message: "Access denied"},
			want: core.ConnAuth,
		},
		{
			name: "mysql db access denied",
			err:  &mysql.MySQLError{Number: 1044, Message: "Access denied for db"},
			want: core.ConnAuth,
		},
		{
			name: "mysql unknown database",
			err:  &mysql.MySQLError{Number: 1049, Message: "Unknown database"},
			want: core.ConnNetwork,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: core.ConnTimeout,
		},
		{
			name: "plain network error",
			err:  errors.New("connection refused"),
			want: core.ConnNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ClassifyConnectError(tt.err)
			var connErr *core.ConnectionError
			require.ErrorAs(t, got, &connErr)
			assert.Equal(t, tt.want, connErr.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyConnectErrorPassthrough(t *testing.T) {
	assert.Nil(t, adapter.ClassifyConnectError(nil))

	orig := core.NewConnectionError(core.ConnAuth, errors.New("bad password"))
	got := adapter.ClassifyConnectError(orig)
	var connErr *core.ConnectionError
	require.ErrorAs(t, got, &connErr)
	assert.Equal(t, core.ConnAuth, connErr.Kind)
}

func TestClassifyQueryError(t *testing.T) {
	bg := context.Background()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want core.QueryErrorKind
	}{
		{
			name: "postgres syntax error",
			ctx:  bg,
			err:  &pgconn.PgError{Code: "42601", Message: "syntax error at or near"},
			want: core.QuerySyntax,
		},
		{
			name: "postgres undefined table",
			ctx:  bg,
			err:  &pgconn.PgError{Code: "42P01", Message: "relation does not exist"},
			want: core.QuerySyntax,
		},
		{
			name: "postgres constraint violation",
			ctx:  bg,
			err:  &pgconn.PgError{Code: "23505", Message: "duplicate key"},
			want: core.QueryExecutionFailed,
		},
		{
			name: "mysql parse error",
			ctx:  bg,
			err:  &mysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"},
			want: core.QuerySyntax,
		},
		{
			name: "sqlite syntax error by message",
			ctx:  bg,
			err:  errors.New(`SQL logic error: near "FROOM": syntax error (1)`),
			want: core.QuerySyntax,
		},
		{
			name: "cancellation",
			ctx:  bg,
			err:  context.Canceled,
			want: core.QueryCancelled,
		},
		{
			name: "generic failure",
			ctx:  bg,
			err:  errors.New("disk I/O error"),
			want: core.QueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ClassifyQueryError(tt.ctx, tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyQueryErrorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := adapter.ClassifyQueryError(ctx, errors.New("driver: bad connection"))
	assert.Equal(t, core.QueryCancelled, got.Kind)
}
