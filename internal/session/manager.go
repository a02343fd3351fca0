package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/dbdeck/dbdeck/internal/executor"
	"github.com/dbdeck/dbdeck/internal/introspect"
	"github.com/dbdeck/dbdeck/internal/secret"
	"github.com/dbdeck/dbdeck/pkg/adapter"
	"github.com/dbdeck/dbdeck/pkg/core"
)

// Manager opens and tracks sessions. Safe for concurrent use.
type Manager struct {
	resolver secret.Resolver
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager. If resolver is nil the
// scheme-based resolver is used; if logger is nil, a discard logger.
func NewManager(resolver secret.Resolver, logger *slog.Logger) *Manager {
	if resolver == nil {
		resolver = secret.SchemeResolver{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		resolver: resolver,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Connect resolves the profile's secret reference, creates the adapter
// for its kind and establishes the connection, retrying transient
// failures with exponential backoff. The resolved credential is used
// for the duration of the connect only. Aborting ctx aborts the
// connect and frees whatever was partially established.
func (m *Manager) Connect(ctx context.Context, profile string, cfg core.ConnectionConfig) (*Session, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cred, err := m.resolver.Resolve(cfg.SecretRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secret for profile %q: %w", profile, err)
	}

	a, err := adapter.New(cfg.Kind, m.logger)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(uint64(cfg.ConnectAttempts-1),
		retry.NewExponential(cfg.RetryBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := a.Connect(ctx, cfg, cred); err != nil {
			var ce *core.ConnectionError
			if errors.As(err, &ce) && ce.Retryable() {
				m.logger.Debug("transient connect failure, will retry",
					slog.String("profile", profile), slog.String("kind", string(ce.Kind)))
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	s := &Session{
		ID:           uuid.NewString(),
		Profile:      profile,
		adapter:      a,
		executor:     executor.New(m.logger),
		introspector: introspect.New(a, m.logger),
		logger:       m.logger,
		cancels:      make(map[uint64]context.CancelFunc),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session connected",
		slog.String("session", s.ID),
		slog.String("profile", profile),
		slog.String("kind", string(cfg.Kind)))
	return s, nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Disconnect closes a session and forgets it. Idempotent: an unknown or
// already-closed session is not an error.
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	m.logger.Info("session disconnected", slog.String("session", id))
	return s.Close()
}

// Sessions returns the currently open sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// CloseAll disconnects every open session, returning the first error.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var firstErr error
	for id, s := range sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close session %s: %w", id, err)
		}
	}
	return firstErr
}
