// Package shared holds the error taxonomy used across the server. Every
// failure that crosses a package boundary is one of these sentinels (or a
// ValidationError), so the transport layer can map it to a status code
// without inspecting backend-specific error types.
package shared

import (
	"errors"
	"fmt"
)

var (

	// common errors
	ErrorNotFound = errors.New("not found")

	// auth-specific errors.
	// ErrorInvalidToken covers every token rejection cause: absent,
	// malformed, bad signature, expired. Callers never learn which.
	ErrorInvalidCredentials = errors.New("invalid password")
	ErrorInvalidToken       = errors.New("invalid token")

	ErrorInvalidAuthHeaderFormat = errors.New("invalid auth header format")

	// storage-specific errors
	ErrorStoreNotConfigured = errors.New("storage is not configured")
)

// ValidationError reports a malformed or missing request field. It maps to
// a 400 response carrying the offending field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidationError returns the *ValidationError wrapped in err, or nil.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
