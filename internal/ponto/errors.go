package ponto

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("disposal point not found")

// ValidationError reports the first field that failed validation.  It is a
// caller error and safe to show to users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// StorageError wraps a persistence failure, including timeouts and
// cancellation.  It is treated as transient; callers render it as a generic
// server error and never expose Err.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
