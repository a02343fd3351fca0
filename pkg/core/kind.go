// Package core holds the shared data model for the dbdeck backend:
// connection configuration, result types, schema descriptions, and the
// error taxonomy used across adapters, the executor, and the session layer.
package core

import (
	"fmt"
	"strings"
)

// Kind identifies a supported database family.
type Kind string

// Supported database kinds.
const (
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
)

// ParseKind parses a database kind string.
// Returns a ConnectionError with KindUnsupportedDialect for unknown values.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPostgres:
		return KindPostgres, nil
	case KindMySQL:
		return KindMySQL, nil
	case KindSQLite:
		return KindSQLite, nil
	default:
		return "", NewConnectionError(ConnUnsupportedDialect,
			fmt.Errorf("unsupported database kind %q (supported: postgres, mysql, sqlite)", s))
	}
}

func (k Kind) String() string {
	return string(k)
}

// DefaultPort returns the conventional server port for the kind.
// SQLite has no port and returns 0.
func (k Kind) DefaultPort() int {
	switch k {
	case KindPostgres:
		return 5432
	case KindMySQL:
		return 3306
	default:
		return 0
	}
}

// RequiresHost reports whether the kind connects over the network.
func (k Kind) RequiresHost() bool {
	return k == KindPostgres || k == KindMySQL
}

// RequiresCredentials reports whether the kind needs a username to connect.
func (k Kind) RequiresCredentials() bool {
	return k == KindPostgres || k == KindMySQL
}
