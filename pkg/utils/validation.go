package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input past 72 bytes, so longer secrets are refused outright.
	MaxPasswordLength = 72
	MaxUsernameLength = 30
	MaxFullNameLength = 100
)

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "Invalid email format"}
	}
	return nil
}

// ValidatePassword enforces the length policy before any hashing happens.
// The minimum counts characters; the maximum counts bytes, which is what
// bcrypt actually reads.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters long"}
	}
	if len(password) > MaxPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at most 72 bytes long"}
	}
	return nil
}

// ValidateUsername validates username format
// Rules: 1-30 characters, letters, numbers, underscores and dots only
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if username == "" {
		return &ValidationError{Field: "username", Message: "Username is required"}
	}

	if len(username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at most 30 characters"}
	}

	if !usernameRegex.MatchString(username) {
		return &ValidationError{Field: "username", Message: "Username can only contain letters, numbers, dots and underscores"}
	}

	return nil
}

// ValidateFullName requires a non-blank display name of bounded length.
func ValidateFullName(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return &ValidationError{Field: "fullName", Message: "Full name is required"}
	}
	if len(fullName) > MaxFullNameLength {
		return &ValidationError{Field: "fullName", Message: "Full name must be at most 100 characters"}
	}
	return nil
}

// NormalizeUsername trims surrounding whitespace. Handles are case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NormalizeEmail converts email to lowercase for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
