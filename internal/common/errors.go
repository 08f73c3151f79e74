// Package common defines the error taxonomy shared by every layer of the view
// service. Callers should use errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrInvalidParams is the kind of every input validation failure.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrInvariantViolation marks stored data that breaks a uniqueness
	// guarantee, e.g. two rows for one view id. Reported to callers as internal.
	ErrInvariantViolation = errors.New("invariant violation")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ParamError describes one rejected input field.
type ParamError struct {
	Field  string
	Reason string
}

// InvalidParams builds a ParamError for field.
func InvalidParams(field, reason string) *ParamError {
	return &ParamError{Field: field, Reason: reason}
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameters: %s: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidParams) hold for every ParamError.
func (e *ParamError) Unwrap() error {
	return ErrInvalidParams
}
