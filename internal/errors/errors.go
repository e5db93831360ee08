// Package errors defines the error taxonomy shared by the registry, its
// persistence backends and the surfaces that present failures to users.
package errors

import (
	"errors"
	"fmt"
)

// Validation failures, surfaced synchronously by Create.
var (
	// ErrInvalidURL is returned when the original URL is not an absolute URL with a scheme and a host.
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidShortCode is returned when a custom short code does not match [A-Za-z0-9]{3,20}.
	ErrInvalidShortCode = errors.New("invalid short code format")

	// ErrInvalidValidity is returned when the validity window is outside 1..10080 minutes.
	ErrInvalidValidity = errors.New("validity must be between 1 and 10080 minutes")
)

// Uniqueness failures.
var (
	// ErrCodeTaken is returned when a custom short code collides with any existing record, expired or not.
	ErrCodeTaken = errors.New("short code already taken")

	// ErrCodeSpaceExhausted is returned when the generator could not produce a free code within the retry budget.
	ErrCodeSpaceExhausted = errors.New("failed to generate unique short code")
)

// Lookup failures. They are kept distinct so callers can show different guidance.
var (
	// ErrShortCodeNotFound is returned when no record carries the short code.
	ErrShortCodeNotFound = errors.New("short code not found")

	// ErrExpired is returned when the record exists but its validity window has passed.
	ErrExpired = errors.New("short code has expired")
)

// ErrPersistence marks a failed durable write or read. The in-memory state stays authoritative.
var ErrPersistence = errors.New("persistence failure")

// ValidationError carries the rejected field and value alongside the sentinel.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// LookupError is returned by resolution and click recording.
type LookupError struct {
	ShortCode string
	Err       error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q: %s", e.ShortCode, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// PersistenceError wraps a backend failure. errors.Is(err, ErrPersistence) holds for it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// IsValidation reports whether err is one of the Create validation failures.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrInvalidShortCode) ||
		errors.Is(err, ErrInvalidValidity)
}
