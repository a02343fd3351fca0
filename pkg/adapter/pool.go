package adapter

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dbdeck/dbdeck/pkg/core"
)

// ConnState is the lifecycle state of a checked-out connection.
type ConnState int

// Connection handle states.
const (
	ConnIdle ConnState = iota
	ConnInUse
	ConnBroken
)

// PoolConfig tunes a connection pool.
type PoolConfig struct {
	// MaxConns bounds concurrent checkouts. Must be >= 1.
	MaxConns int

	// AcquireTimeout bounds how long a checkout may wait for a free
	// connection before failing with ConnectionError (timeout).
	AcquireTimeout time.Duration

	// IdleTimeout evicts connections that sit idle longer than this.
	IdleTimeout time.Duration
}

// Pool owns the live driver connections for one profile session and
// hands out exclusively owned handles. It layers a checkout discipline
// over database/sql's connection pooling: capacity and idle eviction
// are delegated to *sql.DB, while the semaphore makes acquire timeouts
// deterministic and observable.
type Pool struct {
	db     *sql.DB
	sem    *semaphore.Weighted
	cfg    PoolConfig
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool wraps db with checkout discipline. The pool takes ownership
// of db and closes it on Close.
func NewPool(db *sql.DB, cfg PoolConfig, logger *slog.Logger) *Pool {
	if cfg.MaxConns < 1 {
		cfg.MaxConns = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxIdleTime(cfg.IdleTimeout)
	return &Pool{
		db:     db,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConns)),
		cfg:    cfg,
		logger: logger,
	}
}

// DB exposes the underlying handle for operations that manage their own
// connection lifetime (ping at connect time).
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Checkout acquires exclusive ownership of one connection. When all
// connections are in use it blocks until one is released or the acquire
// timeout elapses, which surfaces as a ConnectionError with the timeout
// kind.
func (p *Pool) Checkout(ctx context.Context) (*Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, core.NewConnectionError(core.ConnNetwork, errors.New("pool is closed"))
	}
	p.mu.Unlock()

	acquireCtx := ctx
	var cancel context.CancelFunc
	if p.cfg.AcquireTimeout > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	if err := p.sem.Acquire(acquireCtx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.NewConnectionError(core.ConnTimeout,
				fmt.Errorf("no connection available within %s: %w", p.cfg.AcquireTimeout, err))
		}
		return nil, err
	}

	conn, err := p.db.Conn(acquireCtx)
	if err != nil {
		p.sem.Release(1)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.NewConnectionError(core.ConnTimeout, err)
		}
		return nil, core.NewConnectionError(core.ConnNetwork, err)
	}

	p.logger.Debug("connection checked out")
	return &Conn{conn: conn, pool: p, state: ConnInUse}, nil
}

// Close releases every pooled connection and closes the underlying
// handle. Idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.logger.Debug("closing pool")
	return p.db.Close()
}

// Conn is an exclusively owned checked-out connection. It is owned by
// the caller that checked it out until Release is called.
type Conn struct {
	conn *sql.Conn
	pool *Pool

	mu       sync.Mutex
	state    ConnState
	released bool
}

// State returns the handle's current state.
func (c *Conn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// QueryContext runs a statement that returns rows on this connection.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on this connection.
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.conn.QueryRowContext(ctx, query, args...)
}

// ExecContext runs a statement that returns no rows on this connection.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// MarkBroken flags the connection so Release discards it instead of
// returning it to circulation.
func (c *Conn) MarkBroken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ConnBroken
}

// Release returns the connection to the pool, or discards it when the
// handle was marked broken. Safe to call more than once.
func (c *Conn) Release() error {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil
	}
	c.released = true
	broken := c.state == ConnBroken
	if !broken {
		c.state = ConnIdle
	}
	c.mu.Unlock()

	defer c.pool.sem.Release(1)

	if broken {
		c.pool.logger.Debug("discarding broken connection")
		// Returning driver.ErrBadConn from Raw makes database/sql
		// close the underlying driver connection instead of recycling it.
		_ = c.conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	err := c.conn.Close()
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}
