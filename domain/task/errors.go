package task

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no task exists for the given id.
	ErrNotFound = errors.New("task not found")
	// ErrValidation is returned when an input violates a field rule.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when the stored version moved past the one that was read.
	ErrConflict = errors.New("version conflict")
	// ErrStoreUnavailable is returned when the backing store cannot be reached in time.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError names the offending field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unavailable wraps a store failure so that it matches ErrStoreUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
