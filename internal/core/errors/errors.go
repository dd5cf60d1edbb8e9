// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Authentication and authorization errors.
var (
	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// Configuration errors.
var (
	// ErrNotConfigured indicates a required secret or URL is absent.
	ErrNotConfigured = errors.New("not configured")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Dispatch errors.
var (
	// ErrDispatchFailed indicates a notification channel rejected the message.
	ErrDispatchFailed = errors.New("dispatch failed")

	// ErrNotImplemented indicates a channel exists in the contract but has no backend.
	ErrNotImplemented = errors.New("not implemented")
)

// Upstream errors.
var (
	// ErrUnexpectedStatus indicates an upstream answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Locking errors.
var (
	// ErrLockHeld indicates another instance holds the run lock.
	ErrLockHeld = errors.New("lock held by another instance")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
