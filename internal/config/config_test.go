package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbdeck/dbdeck/pkg/core"
)

const sampleConfig = `
default_profile: local
verbose: false
output: table

profiles:
  local:
    kind: sqlite
    database: ./app.db
  prod:
    kind: postgres
    host: db.example.com
    port: 5432
    database: app
    username: svc
    secret_ref: env:PROD_DB_PASSWORD
    ssl_mode: require
    max_conns: 10
    connect_timeout: 10s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.DefaultProfile)
	assert.Equal(t, "table", cfg.Output)
	require.Len(t, cfg.Profiles, 2)

	prod := cfg.Profiles["prod"]
	assert.Equal(t, core.KindPostgres, prod.Kind)
	assert.Equal(t, "db.example.com", prod.Host)
	assert.Equal(t, "env:PROD_DB_PASSWORD", prod.SecretRef)
	assert.Equal(t, 10, prod.MaxConns)
	assert.Equal(t, 10*time.Second, prod.ConnectTimeout)

	local := cfg.Profiles["local"]
	assert.Equal(t, core.KindSQLite, local.Kind)
	assert.Equal(t, "./app.db", local.Database)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("DBDECK_DEFAULT_PROFILE", "prod")

	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.DefaultProfile)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("DBDECK_OUTPUT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"--output=csv"}))

	cfg, err := Load(writeConfig(t, sampleConfig), flags)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output)
}

func TestUnsetFlagDoesNotOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(writeConfig(t, sampleConfig), flags)
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output)
}

func TestProfileSelection(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)

	p, name, err := cfg.Profile("")
	require.NoError(t, err)
	assert.Equal(t, "local", name)
	assert.Equal(t, core.KindSQLite, p.Kind)

	_, name, err = cfg.Profile("prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", name)

	_, _, err = cfg.Profile("staging")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staging")
}

func TestProfileWithoutDefault(t *testing.T) {
	cfg := &Config{Profiles: map[string]core.ConnectionConfig{}}
	_, _, err := cfg.Profile("")
	require.Error(t, err)
}
