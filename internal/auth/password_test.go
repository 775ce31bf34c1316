package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, salt, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.Len(t, salt, 16)

	ok, err := VerifyPassword("Str0ng!Pass", hash, salt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-password", hash, salt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	hash1, salt1, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	hash2, salt2, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)

	// Each hash only verifies against its own salt.
	ok, err := VerifyPassword("Str0ng!Pass", hash1, salt2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordCorruptHash(t *testing.T) {
	_, err := VerifyPassword("Str0ng!Pass", "not-a-bcrypt-digest", "aabbccdd00112233")
	assert.ErrorIs(t, err, ErrCorruptCredential)
}
