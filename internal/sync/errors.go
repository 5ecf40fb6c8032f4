package sync

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any state mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AsValidationError attempts to unwrap an error into a ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// BlockedOperationError reports a destructive bulk operation refused before
// any backend call was attempted. Distinct from a backend failure.
type BlockedOperationError struct {
	Operation string
	Backend   string
}

func (e *BlockedOperationError) Error() string {
	return fmt.Sprintf("%s is blocked against the %s backend", e.Operation, e.Backend)
}

// AsBlockedOperationError attempts to unwrap an error into a BlockedOperationError.
func AsBlockedOperationError(err error) (*BlockedOperationError, bool) {
	var bErr *BlockedOperationError
	if errors.As(err, &bErr) {
		return bErr, true
	}
	return nil, false
}

// PersistenceError wraps a failed backend write. The optimistic in-memory
// record stays in place; its status is marked failed instead.
type PersistenceError struct {
	Backend   string
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Backend, e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
