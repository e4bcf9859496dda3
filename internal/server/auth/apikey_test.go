package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey_Format(t *testing.T) {
	k, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(k, "vg_"))
	assert.Len(t, k, 3+48)
	assert.True(t, LooksLikeAPIKey(k))
}

func TestGenerateAPIKey_NoCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		k, err := GenerateAPIKey()
		require.NoError(t, err)
		_, dup := seen[k]
		require.False(t, dup, "duplicate key after %d draws", i)
		seen[k] = struct{}{}
	}
}

func TestLooksLikeAPIKey(t *testing.T) {
	assert.False(t, LooksLikeAPIKey(""))
	assert.False(t, LooksLikeAPIKey("vg_short"))
	assert.False(t, LooksLikeAPIKey("xx_"+strings.Repeat("a", 48)))
}

func TestEqualKeys(t *testing.T) {
	assert.True(t, EqualKeys("vg_a", "vg_a"))
	assert.False(t, EqualKeys("vg_a", "vg_b"))
	assert.False(t, EqualKeys("vg_a", "vg_ab"))
}
