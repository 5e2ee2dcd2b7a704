package models

import (
	"errors"
	"fmt"
)

// ErrVersionConflict is returned by holding stores when a guarded
// update or delete names a version the row no longer has. Callers
// retry the whole read-modify-write.
var ErrVersionConflict = errors.New("holding version conflict")

// ValidationError reports malformed input. The caller can correct the
// request; nothing was written.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing resource (stock, user, holding).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
}

// InsufficientQuantityError reports a sell that exceeds the held
// quantity. Available is surfaced so the caller can tell the user how
// many shares they actually own.
type InsufficientQuantityError struct {
	Requested int64
	Available int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("Not enough stocks to sell. You own %d shares.", e.Available)
}

// StorageError wraps a persistence failure. Fatal for the current
// request; surfaced as a 500 without leaking driver internals.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
