package cache

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies cache failures
type ErrorKind string

const (
	// KindItemTooLarge marks entries rejected at Set time for exceeding
	// the configured item size budget
	KindItemTooLarge ErrorKind = "item_too_large"

	// KindLockTimeout marks operations that gave up waiting for a lock
	KindLockTimeout ErrorKind = "lock_timeout"

	// KindSerialization marks value encode/decode failures
	KindSerialization ErrorKind = "serialization_error"

	// KindBackend marks backend (e.g. Redis) connectivity failures
	KindBackend ErrorKind = "backend_error"
)

// Error represents a cache failure that can be classified by the caller
type Error struct {
	Kind    ErrorKind
	Message string
	Inner   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s: %s (inner: %v)", e.Kind, e.Message, e.Inner)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped inner error
func (e *Error) Unwrap() error {
	return e.Inner
}

// NewItemTooLargeError creates a capacity-violation error for an oversized entry
func NewItemTooLargeError(key string, size, max int64) *Error {
	return &Error{
		Kind:    KindItemTooLarge,
		Message: fmt.Sprintf("item %q is %d bytes, exceeds maximum of %d", key, size, max),
	}
}

// NewLockTimeoutError creates an error for a lock wait that exceeded its bound.
// Callers should treat it as a retryable infrastructure error.
func NewLockTimeoutError(op string, timeout time.Duration) *Error {
	return &Error{
		Kind:    KindLockTimeout,
		Message: fmt.Sprintf("%s: could not acquire lock within %s", op, timeout),
	}
}

// NewSerializationError creates an error for a value that failed to encode or decode
func NewSerializationError(message string, inner error) *Error {
	return &Error{
		Kind:    KindSerialization,
		Message: message,
		Inner:   inner,
	}
}

// NewBackendError creates an error for a failed backend operation
func NewBackendError(message string, inner error) *Error {
	return &Error{
		Kind:    KindBackend,
		Message: message,
		Inner:   inner,
	}
}

// IsKind reports whether err is a cache Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

// IsLockTimeout reports whether err is a lock timeout error
func IsLockTimeout(err error) bool {
	return IsKind(err, KindLockTimeout)
}

// IsItemTooLarge reports whether err is an oversized-item rejection
func IsItemTooLarge(err error) bool {
	return IsKind(err, KindItemTooLarge)
}
