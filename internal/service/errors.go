package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrUnauthorized     = errors.New("session belongs to another user")
	ErrAlreadyCompleted = errors.New("interview already completed")
	ErrSessionBusy      = errors.New("another answer for this session is in progress")
	ErrInvalidInput     = errors.New("invalid input")
)

// StorageError wraps a persistence failure. The mutation it interrupted was
// not applied, so the request can be retried as is.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Retryable reports that the caller may resend the same request
func (e *StorageError) Retryable() bool {
	return true
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
