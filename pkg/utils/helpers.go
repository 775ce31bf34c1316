package utils

import (
	"time"

	"golang.org/x/exp/rand"
)

func init() {
	rand.Seed(uint64(time.Now().UnixNano()))
}

// GenerateRandomString returns a random alphanumeric string of the given
// length. Only used for development-time defaults, not for anything that
// needs cryptographic entropy.
func GenerateRandomString(limit int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, limit)
	for i := range result {
		result[i] = chars[rand.Intn(len(chars))]
	}

	return string(result)
}

// GeneratePassword returns a random password containing at least one
// lowercase letter, uppercase letter, digit and symbol.
func GeneratePassword(limit int) string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		digits  = "0123456789"
		symbols = "!@#$%^&*"
	)

	if limit < 8 {
		limit = 8
	}

	result := []byte{
		lower[rand.Intn(len(lower))],
		upper[rand.Intn(len(upper))],
		digits[rand.Intn(len(digits))],
		symbols[rand.Intn(len(symbols))],
	}
	result = append(result, GenerateRandomString(limit-len(result))...)
	rand.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})

	return string(result)
}
