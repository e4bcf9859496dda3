package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/voxgate/voxgate/internal/common"
)

const (
	APIKeyPrefix = "vg_"
	apiKeyBytes  = 24
)

// GenerateAPIKey returns a new random key: the "vg_" prefix followed by 24
// random bytes in hex.
func GenerateAPIKey() (string, error) {
	s, err := common.MakeRandHexString(apiKeyBytes)
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return APIKeyPrefix + s, nil
}

// LooksLikeAPIKey rejects values that cannot be keys before any lookup.
func LooksLikeAPIKey(key string) bool {
	return len(key) == len(APIKeyPrefix)+2*apiKeyBytes && key[:len(APIKeyPrefix)] == APIKeyPrefix
}

// EqualKeys compares two keys in constant time.
func EqualKeys(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
