package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRateLimited      = errors.New("too many requests")
	ErrNoPermission     = errors.New("no permission")
)

// InvalidIDError is returned when a path id does not decode to an entry id.
type InvalidIDError struct {
	Raw string
	Err error
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %q: %v", e.Raw, e.Err)
}

func (e *InvalidIDError) Unwrap() error { return e.Err }

// ValidationError wraps a payload that failed to bind or validate.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StoreError is a persistence failure. Its details are never sent to
// clients.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
