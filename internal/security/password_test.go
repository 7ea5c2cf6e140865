package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	passwords := []string{"Abcdef1", "correct horse battery Staple 9", "ÄöüXyz1", "x"}

	for _, p := range passwords {
		hash, err := HashPassword(p)
		require.NoError(t, err)

		assert.NotEqual(t, p, hash)
		assert.True(t, VerifyPassword(hash, p), "own password must verify")
		assert.False(t, VerifyPassword(hash, p+"!"), "different password must not verify")
	}
}

func TestHashPassword_SaltedAndSelfDescribing(t *testing.T) {
	a, err := HashPassword("Abcdef1")
	require.NoError(t, err)
	b, err := HashPassword("Abcdef1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "per-call salt")
	assert.True(t, strings.HasPrefix(a, "$2a$10$"))

	cost, err := bcrypt.Cost([]byte(a))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("A1b", 30))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPassword_GarbageHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "Abcdef1"))
	assert.False(t, VerifyPassword("", ""))
}
