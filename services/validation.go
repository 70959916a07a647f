package services

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	// bcrypt only looks at the first 72 bytes and rejects longer input.
	MaxPasswordBytes  = 72
	MaxUsernameLength = 255
)

var (
	ErrMissingFields     = fmt.Errorf("%w: please fill in all fields", ErrValidation)
	ErrPasswordMismatch  = fmt.Errorf("%w: passwords don't match", ErrValidation)
	ErrPasswordTooShort  = fmt.Errorf("%w: password must be %d+ characters", ErrValidation, MinPasswordLength)
	ErrPasswordTooLong   = fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordBytes)
	ErrUsernameTooLong   = fmt.Errorf("%w: username must be at most %d characters", ErrValidation, MaxUsernameLength)
	ErrTaskTextRequired  = fmt.Errorf("%w: task text is required", ErrValidation)
	ErrTaskTextMalformed = fmt.Errorf("%w: task text is not valid UTF-8", ErrValidation)
)

// ValidateSignup checks a signup form. Inputs are trimmed first, so callers
// should pass the trimmed values on to CreateAccount.
func ValidateSignup(username, password, confirm string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	confirm = strings.TrimSpace(confirm)

	if username == "" || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	return nil
}

func ValidateLogin(username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return ErrMissingFields
	}
	return nil
}

func ValidateTaskText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrTaskTextRequired
	}
	if !utf8.ValidString(text) {
		return ErrTaskTextMalformed
	}
	return nil
}
