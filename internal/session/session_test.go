package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbdeck/dbdeck/internal/secret"
	"github.com/dbdeck/dbdeck/internal/testutil"
	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
	litedialect "github.com/dbdeck/dbdeck/pkg/dialects/sqlite"
)

// fakeAdapter simulates a database family behind the registry: it can
// fail the first N connects with a transient error and records the
// credential it was handed.
type fakeAdapter struct {
	adapter.SQLAdapter

	transientFailures int
	authFail          bool

	connectCalls int
	gotSecret    string
	mock         sqlmock.Sqlmock
}

func (f *fakeAdapter) Kind() core.Kind { return core.KindSQLite }

func (f *fakeAdapter) Connect(_ context.Context, cfg core.ConnectionConfig, sec string) error {
	f.connectCalls++
	f.gotSecret = sec
	if f.connectCalls <= f.transientFailures {
		return core.NewConnectionError(core.ConnNetwork, errors.New("connection refused"))
	}
	if f.authFail {
		return core.NewConnectionError(core.ConnAuth, errors.New("access denied"))
	}

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		return err
	}
	f.mock = mock
	f.Init(db, cfg, litedialect.Dialect{}, nil)
	return nil
}

func (*fakeAdapter) ListTables(context.Context, *adapter.Conn) ([]core.TableInfo, error) {
	return []core.TableInfo{{Name: "orders", Kind: core.TableKindTable}}, nil
}

func (*fakeAdapter) GetColumns(context.Context, *adapter.Conn, string) ([]core.ColumnInfo, error) {
	return []core.ColumnInfo{{Name: "id", Type: "INTEGER", PrimaryKey: true}}, nil
}

func (*fakeAdapter) GetIndexes(context.Context, *adapter.Conn, string) ([]core.IndexInfo, error) {
	return nil, nil
}

func (*fakeAdapter) ServerMetadata(context.Context, *adapter.Conn) (core.ServerMetadata, error) {
	return core.ServerMetadata{Version: "SQLite 3.46.0", Database: ":memory:"}, nil
}

var _ adapter.Adapter = (*fakeAdapter)(nil)

// registerFake installs fake as the factory for the sqlite kind.
func registerFake(fake *fakeAdapter) {
	adapter.Register(core.KindSQLite, func(*slog.Logger) adapter.Adapter { return fake })
}

func testConfig() core.ConnectionConfig {
	return core.ConnectionConfig{
		Kind:            core.KindSQLite,
		Database:        ":memory:",
		ConnectAttempts: 3,
		RetryBaseDelay:  time.Millisecond,
	}
}

func TestConnectRetriesTransientFailures(t *testing.T) {
	fake := &fakeAdapter{transientFailures: 2}
	registerFake(fake)
	mgr := NewManager(nil, testutil.NewTestLogger(t))

	s, err := mgr.Connect(context.Background(), "local", testConfig())
	require.NoError(t, err)
	defer func() { _ = mgr.Disconnect(s.ID) }()

	assert.Equal(t, 3, fake.connectCalls)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "local", s.Profile)
}

func TestConnectGivesUpAfterConfiguredAttempts(t *testing.T) {
	fake := &fakeAdapter{transientFailures: 10}
	registerFake(fake)
	mgr := NewManager(nil, nil)

	_, err := mgr.Connect(context.Background(), "local", testConfig())
	require.Error(t, err)
	assert.Equal(t, 3, fake.connectCalls)

	var connErr *core.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, core.ConnNetwork, connErr.Kind)
}

func TestConnectAuthFailureNotRetried(t *testing.T) {
	fake := &fakeAdapter{authFail: true}
	registerFake(fake)
	mgr := NewManager(nil, nil)

	_, err := mgr.Connect(context.Background(), "local", testConfig())
	require.Error(t, err)
	assert.Equal(t, 1, fake.connectCalls, "auth failures must not be retried")
}

func TestConnectResolvesSecretRef(t *testing.T) {
	fake := &fakeAdapter{}
	registerFake(fake)
	mgr := NewManager(secret.Static{"prod-db": "hunter2"}, nil)

	cfg := testConfig()
	cfg.SecretRef = "prod-db"
	s, err := mgr.Connect(context.Background(), "prod", cfg)
	require.NoError(t, err)
	defer func() { _ = mgr.Disconnect(s.ID) }()

	assert.Equal(t, "hunter2", fake.gotSecret)
}

func TestConnectUnresolvableSecret(t *testing.T) {
	fake := &fakeAdapter{}
	registerFake(fake)
	mgr := NewManager(secret.Static{}, nil)

	cfg := testConfig()
	cfg.SecretRef = "missing"
	_, err := mgr.Connect(context.Background(), "prod", cfg)
	require.Error(t, err)
	assert.Equal(t, 0, fake.connectCalls, "adapter must not be touched without a credential")
}

func TestConnectRejectsInvalidConfig(t *testing.T) {
	mgr := NewManager(nil, nil)

	_, err := mgr.Connect(context.Background(), "bad", core.ConnectionConfig{Kind: "oracle", Database: "x"})
	require.Error(t, err)

	var connErr *core.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, core.ConnUnsupportedDialect, connErr.Kind)
}

func TestExecuteThroughSession(t *testing.T) {
	fake := &fakeAdapter{}
	registerFake(fake)
	mgr := NewManager(nil, testutil.NewTestLogger(t))

	s, err := mgr.Connect(context.Background(), "local", testConfig())
	require.NoError(t, err)
	defer func() { _ = mgr.Disconnect(s.ID) }()

	fake.mock.ExpectQuery("SELECT 1").WillReturnRows(
		sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))

	result := s.Execute(context.Background(), "SELECT 1")
	require.False(t, result.Failed())
	require.Len(t, result.Statements, 1)
	assert.Equal(t, core.StringValue("1"), result.Statements[0].Rows[0]["one"])
}

func TestSessionIntrospection(t *testing.T) {
	fake := &fakeAdapter{}
	registerFake(fake)
	mgr := NewManager(nil, nil)

	s, err := mgr.Connect(context.Background(), "local", testConfig())
	require.NoError(t, err)
	defer func() { _ = mgr.Disconnect(s.ID) }()

	tables, err := s.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "orders", tables[0].Name)

	columns, err := s.GetColumns(context.Background(), "orders")
	require.NoError(t, err)
	require.Len(t, columns, 1)

	meta, err := s.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SQLite 3.46.0", meta.Version)
}

func TestGenerateSelect(t *testing.T) {
	fake := &fakeAdapter{}
	registerFake(fake)
	mgr := NewManager(nil, nil)

	s, err := mgr.Connect(context.Background(), "local", testConfig())
	require.NoError(t, err)
	defer func() { _ = mgr.Disconnect(s.ID) }()

	assert.Equal(t, `SELECT * FROM "orders" LIMIT 100`, s.GenerateSelect("", "orders", 100))
}

func TestDisconnectIdempotent(t *testing.T) {
	fake := &fakeAdapter{}
	registerFake(fake)
	mgr := NewManager(nil, nil)

	s, err := mgr.Connect(context.Background(), "local", testConfig())
	require.NoError(t, err)

	require.NoError(t, mgr.Disconnect(s.ID))
	require.NoError(t, mgr.Disconnect(s.ID))
	require.NoError(t, mgr.Disconnect("not-a-session"))

	_, ok := mgr.Get(s.ID)
	assert.False(t, ok)
}

func TestSessionsAreIndependent(t *testing.T) {
	mgr := NewManager(nil, nil)

	// Each session gets its own adapter instance through the factory,
	// so two sessions for the same profile never share a handle.
	adapter.Register(core.KindSQLite, func(*slog.Logger) adapter.Adapter { return &fakeAdapter{} })

	a, err := mgr.Connect(context.Background(), "local", testConfig())
	require.NoError(t, err)
	b, err := mgr.Connect(context.Background(), "local", testConfig())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	require.NoError(t, mgr.CloseAll())
	assert.Empty(t, mgr.Sessions())
}

func TestCancelWithNoInFlightWork(t *testing.T) {
	fake := &fakeAdapter{}
	registerFake(fake)
	mgr := NewManager(nil, nil)

	s, err := mgr.Connect(context.Background(), "local", testConfig())
	require.NoError(t, err)

	s.Cancel()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
