package session

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minSignInPassword = 6
	minSignUpPassword = 8
	minUsernameLen    = 3
	maxUsernameLen    = 30
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// validateIdentifier accepts either an email (when the identifier contains
// an @) or a username.
func validateIdentifier(identifier string) error {
	if strings.Contains(identifier, "@") {
		return validateEmail(identifier)
	}
	return validateUsername(identifier)
}

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	return nil
}

func validateUsername(username string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return &ValidationError{Field: "username", Message: "username must be 3-30 characters"}
	}
	if !usernameRe.MatchString(username) {
		return &ValidationError{Field: "username", Message: "username may contain only letters, digits and underscores"}
	}
	return nil
}

func validateSignInPassword(password string) error {
	if len(password) < minSignInPassword {
		return &ValidationError{Field: "password", Message: "password is too short"}
	}
	return nil
}

// validateSignUpPassword enforces the stronger registration policy: minimum
// length plus at least one letter and one digit.
func validateSignUpPassword(password string) error {
	if len(password) < minSignUpPassword {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return &ValidationError{Field: "password", Message: "password must contain at least one letter and one digit"}
	}
	return nil
}

func validateName(field, value string, min int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		return &ValidationError{Field: field, Message: "value is too short"}
	}
	return nil
}
