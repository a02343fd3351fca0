package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbdeck/dbdeck/pkg/core"
	"github.com/dbdeck/dbdeck/pkg/dialect"
	_ "github.com/dbdeck/dbdeck/pkg/dialects/mysql"
	_ "github.com/dbdeck/dbdeck/pkg/dialects/postgres"
	_ "github.com/dbdeck/dbdeck/pkg/dialects/sqlite"
)

func TestRegistryHasAllFamilies(t *testing.T) {
	assert.Equal(t,
		[]core.Kind{core.KindMySQL, core.KindPostgres, core.KindSQLite},
		dialect.List())

	for _, kind := range []core.Kind{core.KindPostgres, core.KindMySQL, core.KindSQLite} {
		d, ok := dialect.Get(kind)
		require.True(t, ok, "dialect for %s not registered", kind)
		assert.Equal(t, kind, d.Kind())
	}
}

func TestGetUnknownKind(t *testing.T) {
	_, ok := dialect.Get("oracle")
	assert.False(t, ok)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "it''s", dialect.EscapeLiteral("it's"))
	assert.Equal(t, "age IS NULL", dialect.IsNull("age"))
	assert.Equal(t, "age IS NOT NULL", dialect.IsNotNull("age"))
	assert.Equal(t, "CAST(age AS TEXT)", dialect.Cast("age", "TEXT"))
}
