package adapter

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dbdeck/dbdeck/pkg/core"
)

// ClassifyConnectError maps a driver-level connect failure onto the
// connection error taxonomy, preserving the original error as context.
// Returns nil for a nil error.
func ClassifyConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *core.ConnectionError
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewConnectionError(core.ConnTimeout, err)
	}

	// invalid_authorization_specification is SQLSTATE class 28.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "28") {
			return core.NewConnectionError(core.ConnAuth, err)
		}
		return core.NewConnectionError(core.ConnNetwork, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1044, 1045: // access denied
			return core.NewConnectionError(core.ConnAuth, err)
		}
		return core.NewConnectionError(core.ConnNetwork, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.NewConnectionError(core.ConnTimeout, err)
	}

	return core.NewConnectionError(core.ConnNetwork, err)
}

// ClassifyQueryError maps a statement execution failure onto the query
// error taxonomy. ctx distinguishes cancellation from server errors.
func ClassifyQueryError(ctx context.Context, err error) *core.QueryError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return core.NewQueryError(core.QueryCancelled, err)
	}

	// syntax_error_or_access_rule_violation is SQLSTATE class 42.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "42") {
		return core.NewQueryError(core.QuerySyntax, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1064, 1149: // parse errors
			return core.NewQueryError(core.QuerySyntax, err)
		}
	}

	// The SQLite driver exposes parse failures only through the message.
	if strings.Contains(strings.ToLower(err.Error()), "syntax error") {
		return core.NewQueryError(core.QuerySyntax, err)
	}

	return core.NewQueryError(core.QueryExecutionFailed, err)
}
