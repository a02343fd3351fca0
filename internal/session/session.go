// Package session implements the external interface of the backend: a
// manager that opens uuid-identified sessions over connection profiles,
// and session handles exposing execute, introspection and cancellation.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dbdeck/dbdeck/internal/executor"
	"github.com/dbdeck/dbdeck/internal/introspect"
	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
	"github.com/dbdeck/dbdeck/pkg/dialect"
)

// Session is one independent connection handle. Multiple sessions may
// exist for the same profile; none of them is "current" in any global
// sense.
type Session struct {
	// ID uniquely identifies the session for the lifetime of the
	// process.
	ID string

	// Profile is the configuration profile name the session was opened
	// from, for display and logging.
	Profile string

	adapter      adapter.Adapter
	executor     *executor.Executor
	introspector *introspect.Introspector
	logger       *slog.Logger

	mu      sync.Mutex
	cancels map[uint64]context.CancelFunc
	nextOp  uint64
	closed  bool
}

// registerOp makes an in-flight operation cancellable via Cancel.
func (s *Session) registerOp(ctx context.Context) (context.Context, func()) {
	opCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	id := s.nextOp
	s.nextOp++
	s.cancels[id] = cancel
	s.mu.Unlock()

	return opCtx, func() {
		s.mu.Lock()
		delete(s.cancels, id)
		s.mu.Unlock()
		cancel()
	}
}

// Execute runs a batch of SQL text on one checked-out connection. The
// returned result is never accompanied by a Go error: batch failures
// are carried inside MultiStatementResult.
func (s *Session) Execute(ctx context.Context, sqlText string) core.MultiStatementResult {
	opCtx, done := s.registerOp(ctx)
	defer done()

	conn, err := s.adapter.Pool().Checkout(opCtx)
	if err != nil {
		// Failed before any statement ran.
		return core.MultiStatementResult{FailedIndex: -1, Err: err}
	}
	defer func() { _ = conn.Release() }()

	return s.executor.Execute(opCtx, conn, sqlText)
}

// TestConnection reports whether the server currently answers a trivial
// round trip.
func (s *Session) TestConnection(ctx context.Context) bool {
	return s.adapter.TestConnection(ctx)
}

// ListTables returns tables and views, served from the metadata cache
// when fresh.
func (s *Session) ListTables(ctx context.Context) ([]core.TableInfo, error) {
	opCtx, done := s.registerOp(ctx)
	defer done()
	return s.introspector.ListTables(opCtx)
}

// GetColumns returns column metadata for a table.
func (s *Session) GetColumns(ctx context.Context, table string) ([]core.ColumnInfo, error) {
	opCtx, done := s.registerOp(ctx)
	defer done()
	return s.introspector.GetColumns(opCtx, table)
}

// GetIndexes returns index metadata for a table.
func (s *Session) GetIndexes(ctx context.Context, table string) ([]core.IndexInfo, error) {
	opCtx, done := s.registerOp(ctx)
	defer done()
	return s.introspector.GetIndexes(opCtx, table)
}

// Metadata returns server version, database name, size and encoding.
func (s *Session) Metadata(ctx context.Context) (core.ServerMetadata, error) {
	opCtx, done := s.registerOp(ctx)
	defer done()
	return s.introspector.ServerMetadata(opCtx)
}

// RefreshTable drops cached metadata for one table.
func (s *Session) RefreshTable(table string) {
	s.introspector.Refresh(table)
}

// Dialect returns the session's SQL dialect.
func (s *Session) Dialect() dialect.Dialect {
	return s.adapter.Dialect()
}

// Kind returns the session's database family.
func (s *Session) Kind() core.Kind {
	return s.adapter.Kind()
}

// GenerateSelect builds a dialect-correct preview SELECT for a table.
// A negative limit means no limit.
func (s *Session) GenerateSelect(schema, table string, limit int) string {
	return dialect.BuildSelect(s.adapter.Dialect(), schema, table, limit, dialect.NoOffset)
}

// Cancel aborts every in-flight operation on the session, best-effort.
// The operations observe cancellation at their next I/O boundary and
// fail with QueryError (cancelled).
func (s *Session) Cancel() {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.cancels))
	for _, c := range s.cancels {
		cancels = append(cancels, c)
	}
	s.mu.Unlock()

	s.logger.Debug("cancelling in-flight operations",
		slog.String("session", s.ID), slog.Int("count", len(cancels)))
	for _, c := range cancels {
		c()
	}
}

// Close cancels in-flight work, drops the metadata cache and releases
// the pool. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.Cancel()
	s.introspector.InvalidateAll()
	return s.adapter.Close()
}
