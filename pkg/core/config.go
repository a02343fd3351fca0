package core

import (
	"fmt"
	"time"
)

// Default tuning values applied by WithDefaults. All of them can be
// overridden per profile in the configuration file.
const (
	DefaultMaxConns        = 5
	DefaultConnectTimeout  = 5 * time.Second
	DefaultAcquireTimeout  = 5 * time.Second
	DefaultIdleTimeout     = 5 * time.Minute
	DefaultConnectAttempts = 3
	DefaultRetryBaseDelay  = 500 * time.Millisecond
)

// ConnectionConfig describes how to reach one database. It is treated as
// immutable once handed to an adapter (always passed by value).
//
// For SQLite, Database is a filesystem path (":memory:" is allowed) and
// the network fields are ignored.
type ConnectionConfig struct {
	Kind     Kind   `koanf:"kind"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`

	// SecretRef is resolved to a credential at connect time only;
	// the plaintext secret is never stored in this struct.
	SecretRef string `koanf:"secret_ref"`

	SSLMode string `koanf:"ssl_mode"`

	// Pool and retry tuning.
	MaxConns        int           `koanf:"max_conns"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	AcquireTimeout  time.Duration `koanf:"acquire_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
	RetryBaseDelay  time.Duration `koanf:"retry_base_delay"`
}

// WithDefaults returns a copy with zero-valued tuning fields replaced by
// the package defaults and the port defaulted per kind.
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	if c.Port == 0 {
		c.Port = c.Kind.DefaultPort()
	}
	if c.MaxConns <= 0 {
		c.MaxConns = DefaultMaxConns
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = DefaultAcquireTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = DefaultConnectAttempts
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return c
}

// Validate checks the config for the invariants of its kind: network
// databases need host and username, SQLite needs only a file path.
func (c ConnectionConfig) Validate() error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Kind.RequiresHost() && c.Host == "" {
		return fmt.Errorf("host is required for %s", c.Kind)
	}
	if c.Kind.RequiresCredentials() && c.Username == "" {
		return fmt.Errorf("username is required for %s", c.Kind)
	}
	return nil
}
