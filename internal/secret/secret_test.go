package secret

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemeResolverEnv(t *testing.T) {
	t.Setenv("DBDECK_TEST_SECRET", "hunter2")

	got, err := SchemeResolver{}.Resolve("env:DBDECK_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestSchemeResolverEnvMissing(t *testing.T) {
	_, err := SchemeResolver{}.Resolve("env:DBDECK_TEST_SECRET_MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DBDECK_TEST_SECRET_MISSING")
}

func TestSchemeResolverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(path, []byte("hunter2\n"), 0o600))

	got, err := SchemeResolver{}.Resolve("file:" + path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got, "file contents are trimmed")
}

func TestSchemeResolverFileMissing(t *testing.T) {
	_, err := SchemeResolver{}.Resolve("file:/nonexistent/secret.txt")
	require.Error(t, err)
}

func TestSchemeResolverLiteralAndEmpty(t *testing.T) {
	got, err := SchemeResolver{}.Resolve("plaintext-password")
	require.NoError(t, err)
	assert.Equal(t, "plaintext-password", got)

	got, err = SchemeResolver{}.Resolve("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStaticResolver(t *testing.T) {
	r := Static{"prod-db": "hunter2"}

	got, err := r.Resolve("prod-db")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	_, err = r.Resolve("unknown")
	require.Error(t, err)

	got, err = r.Resolve("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
