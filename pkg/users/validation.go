package users

import (
	"regexp"
	"strings"
)

// Registration and update validation messages returned to clients
const (
	MsgPasswordTooShort   = "Password must be longer than 8 characters"
	MsgPasswordTooLong    = "Password must be less than 64 characters"
	MsgPasswordSpaces     = "Password must not start or end with empty spaces"
	MsgPasswordComplexity = "Password must contain 1 upper case, lower case, number, and special character"
	MsgInvalidEmail       = "Invalid email address"
	MsgEmailTaken         = "The email submitted is already in use."
)

const (
	minPasswordLength = 8
	maxPasswordLength = 64
)

var (
	digitPattern   = regexp.MustCompile(`\d`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	specialPattern = regexp.MustCompile(`\W`)

	// RFC 2822 style address, applied to the normalized (lower-cased) form
	emailPattern = regexp.MustCompile("^[a-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-z0-9!#$%&'*+/=?^_`{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$")
)

// ValidationError is a client-facing validation failure
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidatePassword applies the password rules in order and reports the first
// one that fails.
func ValidatePassword(password string) error {
	switch {
	case len(password) < minPasswordLength:
		return &ValidationError{Message: MsgPasswordTooShort}
	case len(password) > maxPasswordLength:
		return &ValidationError{Message: MsgPasswordTooLong}
	case strings.HasPrefix(password, " ") || strings.HasSuffix(password, " "):
		return &ValidationError{Message: MsgPasswordSpaces}
	}

	if !digitPattern.MatchString(password) ||
		!lowerPattern.MatchString(password) ||
		!upperPattern.MatchString(password) ||
		!specialPattern.MatchString(password) {
		return &ValidationError{Message: MsgPasswordComplexity}
	}
	return nil
}

// ValidateEmail checks an already normalized email address
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	return nil
}
