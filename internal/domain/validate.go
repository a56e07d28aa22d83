package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	handleMinLen = 3
	handleMaxLen = 50
	emailMinLen  = 6
	emailMaxLen  = 100
	secretMinLen = 6
	secretMaxLen = 50
)

// NormalizeEmail lowercases an email address. Applied before every
// comparison and before storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateHandle checks handle length constraints.
func ValidateHandle(handle string) error {
	if l := len(handle); l < handleMinLen || l > handleMaxLen {
		return fmt.Errorf("handle must be %d-%d characters", handleMinLen, handleMaxLen)
	}
	return nil
}

// ValidateSecret checks plaintext secret length before hashing.
func ValidateSecret(secret string) error {
	if l := len(secret); l < secretMinLen || l > secretMaxLen {
		return fmt.Errorf("password must be %d-%d characters", secretMinLen, secretMaxLen)
	}
	return nil
}

// ValidateEmail checks length and shape of a normalized email.
func ValidateEmail(email string) error {
	if l := len(email); l < emailMinLen || l > emailMaxLen {
		return fmt.Errorf("email must be %d-%d characters", emailMinLen, emailMaxLen)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email is not valid")
	}
	return nil
}
