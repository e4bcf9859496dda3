// Package auth issues and verifies session tokens and handles credential
// material: password hashes and API keys.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/voxgate/voxgate/internal/common"
)

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns common.ErrMissingSecret when secret is empty.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, common.ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a token whose subject is accountID and which expires ttl from now.
func (s *TokenService) Issue(accountID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature first and only then the claims. It returns the
// subject of a valid token, or one of common.ErrTokenMalformed,
// common.ErrTokenExpired and common.ErrTokenInvalid.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		// Segments that only fail strict base64 were altered after signing.
		if _, _, lenientErr := jwt.NewParser().ParseUnverified(tokenString, &jwt.RegisteredClaims{}); lenientErr == nil {
			return "", common.ErrTokenInvalid
		}
		return "", common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", common.ErrTokenExpired
	default:
		return "", common.ErrTokenInvalid
	}

	if claims.Subject == "" {
		return "", common.ErrTokenInvalid
	}
	return claims.Subject, nil
}
