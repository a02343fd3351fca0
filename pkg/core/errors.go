package core

import "fmt"

// ConnectionErrorKind classifies connection failures.
type ConnectionErrorKind string

// Connection failure classes.
const (
	ConnNetwork            ConnectionErrorKind = "network"
	ConnAuth               ConnectionErrorKind = "auth"
	ConnTimeout            ConnectionErrorKind = "timeout"
	ConnUnsupportedDialect ConnectionErrorKind = "unsupported_dialect"
)

// ConnectionError wraps a driver-level connect or checkout failure.
// The original driver error is preserved so callers can display detail.
type ConnectionError struct {
	Kind ConnectionErrorKind
	Err  error
}

// NewConnectionError builds a ConnectionError of the given kind.
func NewConnectionError(kind ConnectionErrorKind, err error) *ConnectionError {
	return &ConnectionError{Kind: kind, Err: err}
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error (%s): %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient and may be retried
// with backoff. Auth and dialect errors are never transient.
func (e *ConnectionError) Retryable() bool {
	return e.Kind == ConnNetwork || e.Kind == ConnTimeout
}

// QueryErrorKind classifies statement execution failures.
type QueryErrorKind string

// Query failure classes. SQL errors are never retried automatically.
const (
	QuerySyntax          QueryErrorKind = "syntax"
	QueryExecutionFailed QueryErrorKind = "execution_failed"
	QueryCancelled       QueryErrorKind = "cancelled"
)

// QueryError wraps a failure of one statement in a batch.
type QueryError struct {
	Kind QueryErrorKind
	Err  error
}

// NewQueryError builds a QueryError of the given kind.
func NewQueryError(kind QueryErrorKind, err error) *QueryError {
	return &QueryError{Kind: kind, Err: err}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error (%s): %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// MetadataError wraps an introspection failure. Subject names what was
// being fetched (a table name, "tables", "server").
type MetadataError struct {
	Subject string
	Err     error
}

// NewMetadataError wraps err as an introspection failure.
func NewMetadataError(subject string, err error) *MetadataError {
	return &MetadataError{Subject: subject, Err: err}
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata unavailable for %s: %v", e.Subject, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}
