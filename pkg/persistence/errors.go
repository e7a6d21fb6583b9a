// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrSessionNotFound indicates nothing is stored for the session key.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSession indicates a session without a session id was given.
	ErrInvalidSession = errors.New("invalid session")
)

// SessionError wraps session storage errors with additional context.
type SessionError struct {
	Op  string // Operation being performed (e.g., "GetContext", "SaveContext")
	Key string // Session key
	Err error  // Underlying error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s operation failed for session %s: %v", e.Op, e.Key, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for session errors.
func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSessionError creates a new session error with context.
func NewSessionError(op, key string, err error) *SessionError {
	return &SessionError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

// IsSessionNotFound checks if an error indicates a session was not found.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
