package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"postgres", KindPostgres, false},
		{"mysql", KindMySQL, false},
		{"sqlite", KindSQLite, false},
		{"oracle", "", true},
		{"", "", true},
		{"POSTGRES", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var ce *ConnectionError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, ConnUnsupportedDialect, ce.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindDefaults(t *testing.T) {
	assert.Equal(t, 5432, KindPostgres.DefaultPort())
	assert.Equal(t, 3306, KindMySQL.DefaultPort())
	assert.Equal(t, 0, KindSQLite.DefaultPort())

	assert.True(t, KindPostgres.RequiresHost())
	assert.True(t, KindMySQL.RequiresCredentials())
	assert.False(t, KindSQLite.RequiresHost())
	assert.False(t, KindSQLite.RequiresCredentials())
}

func TestConnectionErrorRetryable(t *testing.T) {
	base := errors.New("boom")
	assert.True(t, NewConnectionError(ConnNetwork, base).Retryable())
	assert.True(t, NewConnectionError(ConnTimeout, base).Retryable())
	assert.False(t, NewConnectionError(ConnAuth, base).Retryable())
	assert.False(t, NewConnectionError(ConnUnsupportedDialect, base).Retryable())
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("original driver message")

	connErr := NewConnectionError(ConnAuth, base)
	assert.ErrorIs(t, connErr, base)
	assert.Contains(t, connErr.Error(), "original driver message")

	queryErr := NewQueryError(QuerySyntax, base)
	assert.ErrorIs(t, queryErr, base)

	metaErr := NewMetadataError("users", base)
	assert.ErrorIs(t, metaErr, base)
	assert.Contains(t, metaErr.Error(), "users")
}
