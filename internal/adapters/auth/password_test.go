package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(4)
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt)
		assert.False(t, seen[salt], "salts must not repeat")
		seen[salt] = true
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(4)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	hash, err := h.Hash(salt, "correct horse battery")
	require.NoError(t, err)

	require.NoError(t, h.Compare(hash, salt, "correct horse battery"))
	require.ErrorIs(t, h.Compare(hash, salt, "wrong"), domain.ErrUnauthorized)
	require.ErrorIs(t, h.Compare(hash, "other-salt", "correct horse battery"), domain.ErrUnauthorized)
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	h := NewBcryptHasher(4)
	long := strings.Repeat("p", 200)

	hash, err := h.Hash("salt", long)
	require.NoError(t, err)
	require.NoError(t, h.Compare(hash, "salt", long))
	require.ErrorIs(t, h.Compare(hash, "salt", long[:199]), domain.ErrUnauthorized)
}
