package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEmail is returned when registering an email that is
	// already bound to an account.
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password; the wording is identical on purpose so callers cannot
	// probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountLocked is returned while a lockout is in effect, regardless
	// of whether the submitted password is correct.
	ErrAccountLocked = errors.New("account is temporarily locked due to too many failed login attempts")

	// ErrInvalidToken covers bad signature, wrong kind, expired, and
	// already-consumed tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrNotFound is returned when the identity vanished between
	// authentication and the operation.
	ErrNotFound = errors.New("user not found")
)

// WeakPasswordError carries the full list of violated password-policy rules.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("password does not meet security requirements: %d violation(s)", len(e.Violations))
}
