package auth

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is the umbrella error for every authentication failure that
// is reported to clients as a generic 401.
var ErrUnauthorized = errors.New("unauthorized request")

// Authentication failures. Each of the token/subject errors also matches
// ErrUnauthorized via errors.Is.
var (
	ErrMissingField       = errors.New("missing field")
	ErrInvalidCredentials = &AuthError{reason: "invalid credentials"}
	ErrInvalidToken       = &AuthError{reason: "invalid token"}
	ErrUnknownSubject     = &AuthError{reason: "unknown subject"}
	ErrAccountNotFound    = errors.New("account not found")
)

// AuthError is an authentication failure whose detail is only ever logged.
type AuthError struct {
	reason string
}

func (e *AuthError) Error() string {
	return e.reason
}

// Unwrap makes every AuthError match ErrUnauthorized.
func (e *AuthError) Unwrap() error {
	return ErrUnauthorized
}

// MissingFieldError reports the first absent field of a request body.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing '%s' in request body", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
