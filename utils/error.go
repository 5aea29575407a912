package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError rejects bad input before any I/O. The message is surfaced
// verbatim to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is the 404-equivalent for an unknown order/ingredient/supplier
// reference.
type NotFoundError struct {
	Resource string
	Id       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.Id)
}

func (e *NotFoundError) Unwrap() error { return ErrorRecordNotFound }

// ConflictError rejects an operation illegal in the entity's current state
// (editing items on a non-ordered order, deleting a delivered order, illegal
// status transition). CurrentState explains why.
type ConflictError struct {
	Message      string
	CurrentState string
}

func (e *ConflictError) Error() string {
	if e.CurrentState == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (current state: %s)", e.Message, e.CurrentState)
}

func NewConflictError(currentState string, format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...), CurrentState: currentState}
}

// StorageError wraps a transaction/commit failure that survived the single
// retry. The failed transaction is fully rolled back before it surfaces.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
