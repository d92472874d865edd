package business

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RequireField fails when the trimmed value is empty.
func RequireField(field, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", RequiredField(field)
	}
	return value, nil
}

// ValidateFormat checks a value against an expected pattern.
func ValidateFormat(field, value string, pattern *regexp.Regexp) (string, error) {
	if !pattern.MatchString(value) {
		return "", InvalidFormat(field, "pattern mismatch")
	}
	return value, nil
}

// ValidateEmail checks the minimal shape of an email address. Full RFC 5322
// conformance is deliberately not attempted.
func ValidateEmail(field, value string) (string, error) {
	if !emailPattern.MatchString(value) {
		return "", InvalidEmail(field)
	}
	return value, nil
}

// ValidateRange checks an integer input against inclusive bounds.
func ValidateRange(field string, value, min, max int64) (int64, error) {
	if value < min || value > max {
		return 0, InvalidRange(field, min, max)
	}
	return value, nil
}

// ValidatePasswordMatch checks that a password confirmation equals the
// password itself.
func ValidatePasswordMatch(password, confirm string) error {
	if password != confirm {
		return PasswordMismatch()
	}
	return nil
}
