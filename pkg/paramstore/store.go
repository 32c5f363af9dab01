package paramstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store is a named key/value parameter store.
type Store interface {
	// Name identifies the store in logs and metrics.
	Name() string

	// Get returns the current value of a parameter.
	Get(ctx context.Context, name string) (Parameter, error)

	// Put writes value under name. With overwrite false the write fails if
	// the parameter already exists. Existing metadata such as the parameter
	// type or encryption key is left untouched.
	Put(ctx context.Context, name, value string, overwrite bool) (PutResult, error)
}

// Parameter is a stored value and the metadata the store reports for it.
type Parameter struct {
	Name         string
	Value        string
	Type         string
	Version      int64
	LastModified time.Time
}

// PutResult acknowledges a successful write.
type PutResult struct {
	Version int64
}

// Sentinel error kinds. Use errors.Is against these.
var (
	ErrNotFound     = errors.New("parameter not found")
	ErrAccessDenied = errors.New("access denied")
	ErrTransient    = errors.New("transient service error")
	ErrExists       = errors.New("parameter already exists")
	ErrInvalid      = errors.New("invalid request")
)

// Error carries the failed operation and parameter alongside the store error.
type Error struct {
	// Op is the store operation that failed: "get" or "put".
	Op string

	// Name is the parameter the operation targeted.
	Name string

	// Kind is one of the sentinel errors above.
	Kind error

	// Err is the underlying error returned by the backend.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Name, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the backend error to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns a short label for the error kind, suitable for metric labels.
func KindOf(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNotFound):
		return "missing_target"
	case errors.Is(err, ErrAccessDenied):
		return "permission_denied"
	case errors.Is(err, ErrExists):
		return "exists"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "unknown"
	}
}
