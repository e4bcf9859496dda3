// Package common defines shared constants and sentinel errors used across
// voxgate components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound             = errors.New("not found")
	ErrDuplicateIdentity      = errors.New("user already exists")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrStorageUnavailable     = errors.New("storage unavailable")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrQuotaExceeded      = errors.New("character limit exceeded")
	ErrAlreadySettled     = errors.New("reservation already settled")

	// Session token errors.
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")

	// Configuration errors.
	ErrMissingSecret = errors.New("signing secret is not configured")
)

// ValidationError reports a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
