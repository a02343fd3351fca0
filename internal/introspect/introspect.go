// Package introspect fetches schema metadata through an adapter and
// caches it with a TTL, so repeated sidebar-style lookups do not hit
// the database on every call.
package introspect

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
)

// DefaultTTL is how long cached metadata stays fresh.
const DefaultTTL = 5 * time.Minute

// tablesKey is the reserved cache key for the table list, which is not
// scoped to a single table.
const tablesKey = "\x00tables"

// entry is one cached fetch with its freshness timestamp.
type entry struct {
	tables    []core.TableInfo
	columns   []core.ColumnInfo
	indexes   []core.IndexInfo
	fetchedAt time.Time
}

// Introspector caches metadata for one connected profile. Safe for
// concurrent use.
type Introspector struct {
	adapter adapter.Adapter
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]entry
}

// Option customizes an Introspector.
type Option func(*Introspector)

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(i *Introspector) { i.ttl = ttl }
}

// WithClock injects the time source, for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(i *Introspector) { i.now = now }
}

// New creates an introspector over a connected adapter.
// If logger is nil, a discard logger is used.
func New(a adapter.Adapter, logger *slog.Logger, opts ...Option) *Introspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	i := &Introspector{
		adapter: a,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logger,
		cache:   make(map[string]entry),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// fresh reports whether a cache entry is present and within TTL.
func (i *Introspector) fresh(key string) (entry, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.cache[key]
	if !ok || i.now().Sub(e.fetchedAt) >= i.ttl {
		return entry{}, false
	}
	return e, true
}

func (i *Introspector) store(key string, e entry) {
	e.fetchedAt = i.now()
	i.mu.Lock()
	i.cache[key] = e
	i.mu.Unlock()
}

// ListTables returns the tables and views of the connected database,
// served from cache when fresh.
func (i *Introspector) ListTables(ctx context.Context) ([]core.TableInfo, error) {
	if e, ok := i.fresh(tablesKey); ok {
		i.logger.Debug("table list served from cache")
		return e.tables, nil
	}

	conn, err := i.adapter.Pool().Checkout(ctx)
	if err != nil {
		return nil, core.NewMetadataError("tables", err)
	}
	defer func() { _ = conn.Release() }()

	tables, err := i.adapter.ListTables(ctx, conn)
	if err != nil {
		return nil, core.NewMetadataError("tables", err)
	}
	i.store(tablesKey, entry{tables: tables})
	return tables, nil
}

// GetColumns returns column metadata for a table, served from cache
// when fresh.
func (i *Introspector) GetColumns(ctx context.Context, table string) ([]core.ColumnInfo, error) {
	key := "columns:" + table
	if e, ok := i.fresh(key); ok {
		i.logger.Debug("column metadata served from cache", slog.String("table", table))
		return e.columns, nil
	}

	conn, err := i.adapter.Pool().Checkout(ctx)
	if err != nil {
		return nil, core.NewMetadataError(table, err)
	}
	defer func() { _ = conn.Release() }()

	columns, err := i.adapter.GetColumns(ctx, conn, table)
	if err != nil {
		return nil, core.NewMetadataError(table, err)
	}
	i.store(key, entry{columns: columns})
	return columns, nil
}

// GetIndexes returns index metadata for a table, served from cache
// when fresh.
func (i *Introspector) GetIndexes(ctx context.Context, table string) ([]core.IndexInfo, error) {
	key := "indexes:" + table
	if e, ok := i.fresh(key); ok {
		i.logger.Debug("index metadata served from cache", slog.String("table", table))
		return e.indexes, nil
	}

	conn, err := i.adapter.Pool().Checkout(ctx)
	if err != nil {
		return nil, core.NewMetadataError(table, err)
	}
	defer func() { _ = conn.Release() }()

	indexes, err := i.adapter.GetIndexes(ctx, conn, table)
	if err != nil {
		return nil, core.NewMetadataError(table, err)
	}
	i.store(key, entry{indexes: indexes})
	return indexes, nil
}

// ServerMetadata fetches server facts. Never cached; callers use it
// for connection status displays where staleness is confusing.
func (i *Introspector) ServerMetadata(ctx context.Context) (core.ServerMetadata, error) {
	conn, err := i.adapter.Pool().Checkout(ctx)
	if err != nil {
		return core.ServerMetadata{}, core.NewMetadataError("server", err)
	}
	defer func() { _ = conn.Release() }()

	meta, err := i.adapter.ServerMetadata(ctx, conn)
	if err != nil {
		return core.ServerMetadata{}, core.NewMetadataError("server", err)
	}
	return meta, nil
}

// Refresh drops cached metadata for one table, forcing the next fetch
// to hit the database. The table list is dropped too, since a refresh
// usually follows DDL.
func (i *Introspector) Refresh(table string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.cache, "columns:"+table)
	delete(i.cache, "indexes:"+table)
	delete(i.cache, tablesKey)
}

// InvalidateAll drops the entire cache. Called on disconnect.
func (i *Introspector) InvalidateAll() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cache = make(map[string]entry)
}

// CacheSize reports the number of live cache entries, fresh or stale.
func (i *Introspector) CacheSize() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.cache)
}
