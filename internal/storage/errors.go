// Package storage holds what the three backing stores have in common: the
// error taxonomy callers branch on, and the guard that bounds every store call
// with a timeout and a circuit breaker.
package storage

import (
	"errors"
	"fmt"
)

// Error classes shared by every store.
var (
	// ErrStorageUnavailable covers connection, authentication and timeout failures.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrQueryFailed covers malformed queries and runtime query errors.
	ErrQueryFailed = errors.New("query failed")

	// ErrSchemaMissing means the favorite keyword table does not exist yet.
	ErrSchemaMissing = errors.New("schema missing")
)

// Error is a classified store error.
type Error struct {
	Kind  error  // one of the Err* classes above
	Store string // "postgres", "mongodb", "neo4j"
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Store, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Store, e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the class and the driver error to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, store, op string, err error) error {
	var se *Error
	if errors.As(err, &se) && se.Kind == kind {
		return err
	}
	return &Error{Kind: kind, Store: store, Op: op, Err: err}
}

// Unavailable classifies err as ErrStorageUnavailable.
func Unavailable(store, op string, err error) error {
	return newError(ErrStorageUnavailable, store, op, err)
}

// QueryFailed classifies err as ErrQueryFailed.
func QueryFailed(store, op string, err error) error {
	return newError(ErrQueryFailed, store, op, err)
}

// SchemaMissing classifies err as ErrSchemaMissing.
func SchemaMissing(store, op string, err error) error {
	return newError(ErrSchemaMissing, store, op, err)
}

// IsUnavailable reports whether err is, or wraps, ErrStorageUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsClassified reports whether err already carries a storage class.
func IsClassified(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// Outcome names the class of err for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrStorageUnavailable):
		return "unavailable"
	case errors.Is(err, ErrSchemaMissing):
		return "schema_missing"
	default:
		return "query_failed"
	}
}
