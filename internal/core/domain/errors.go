package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Relay Errors.

	// ErrQueryFailed indicates the note collection query could not be executed.
	ErrQueryFailed = errors.New("query failed")

	// ErrWriteFailed indicates a record could not be created or updated.
	// Records written earlier in the same invocation are not rolled back
	// unless the cleanup policy is selected.
	ErrWriteFailed = errors.New("write failed")

	// ErrDispatchFailed indicates the messaging subsystem rejected the send.
	ErrDispatchFailed = errors.New("dispatch failed")
)
