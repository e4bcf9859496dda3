package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/voxgate/voxgate/internal/common"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordHasher hashes and compares passwords with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost  int
	dummy []byte
}

// NewPasswordHasher precomputes a hash of a random throwaway password,
// compared against when the account being logged into does not exist.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	dummy, err := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt cost %d: %w", cost, err)
	}
	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

func (h *PasswordHasher) Hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Match reports whether password matches hash. A nil hash is compared
// against the dummy hash so the call takes the same time either way.
func (h *PasswordHasher) Match(hash []byte, password string) bool {
	if hash == nil {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
