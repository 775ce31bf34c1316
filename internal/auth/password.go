package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// hashCost mirrors the bcrypt work factor the platform has always used.
	hashCost = 12

	saltBytes = 8
)

// ErrCorruptCredential indicates the stored hash is not a valid bcrypt
// digest. This is a data problem, not a caller problem.
var ErrCorruptCredential = errors.New("corrupt credential record")

// HashPassword generates a fresh per-credential salt and returns the bcrypt
// hash of the salted password together with the hex-encoded salt. The salt
// is regenerated on every call, so hashing the same password twice never
// yields the same digest.
func HashPassword(password string) (hash string, salt string, err error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt = hex.EncodeToString(raw)

	digest, err := bcrypt.GenerateFromPassword([]byte(password+salt), hashCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), salt, nil
}

// VerifyPassword recomputes the salted password and compares it against the
// stored hash using bcrypt's constant-time comparison. A mismatch or an
// over-long candidate returns false; a stored hash that bcrypt cannot parse
// returns ErrCorruptCredential.
func VerifyPassword(password, hash, salt string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+salt))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, ErrCorruptCredential
	}
}
