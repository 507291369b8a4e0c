package util

import (
	"fmt"
	"strings"
)

// MinPasswordLen is the minimum accepted password length at registration.
const MinPasswordLen = 6

// ValidateEmail checks the email is non-empty and loosely well-formed.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks the password meets the minimum length.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is empty")
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

// ValidateTitle checks a task title is non-empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 255 {
		return fmt.Errorf("title too long, max 255 characters")
	}
	return nil
}
