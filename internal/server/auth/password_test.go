package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotContains(t, string(hash), "correct horse")

	assert.True(t, h.Match(hash, "correct horse"))
	assert.False(t, h.Match(hash, "wrong"))
	assert.False(t, h.Match(nil, "correct horse"))

	again, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestNewPasswordHasher_BadCost(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}
