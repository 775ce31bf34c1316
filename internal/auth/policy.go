package auth

import (
	"regexp"
	"strings"
)

const minPasswordLength = 8

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	lowerPattern  = regexp.MustCompile(`[a-z]`)
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	digitPattern  = regexp.MustCompile(`\d`)
	symbolPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidatePasswordStrength applies the platform password policy and returns
// every violated rule as a human-readable message. An empty slice means the
// password is acceptable.
func ValidatePasswordStrength(password string) []string {
	var violations []string

	if len(password) < minPasswordLength {
		violations = append(violations, "Password must be at least 8 characters long")
	}
	if !lowerPattern.MatchString(password) {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !upperPattern.MatchString(password) {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !digitPattern.MatchString(password) {
		violations = append(violations, "Password must contain at least one number")
	}
	if !symbolPattern.MatchString(password) {
		violations = append(violations, "Password must contain at least one special character")
	}

	return violations
}

// SanitizeInput strips HTML tags and surrounding whitespace from free-text
// input before persistence. Defense in depth; output encoding at render time
// is still the renderer's job.
func SanitizeInput(input string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(input, ""))
}
