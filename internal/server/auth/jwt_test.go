package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxgate/voxgate/internal/common"
)

func newTestService(t *testing.T, secret string, ttl time.Duration, now time.Time) *TokenService {
	t.Helper()
	s, err := NewTokenService(secret, ttl)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestNewTokenService_MissingSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.ErrorIs(t, err, common.ErrMissingSecret)

	_, err = NewTokenService("s", 0)
	assert.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestService(t, "super-secret", 30*24*time.Hour, time.Now())

	tok, err := s.Issue("account-123")
	require.NoError(t, err)

	id, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "account-123", id)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestService(t, "secret", time.Hour, issuedAt)

	tok, err := s.Issue("u1")
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	_, err = s.Verify(tok)
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := newTestService(t, "right-secret", time.Hour, now).Issue("u2")
	require.NoError(t, err)

	_, err = newTestService(t, "wrong-secret", time.Hour, now).Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerify_ExpiredWithWrongSecretIsInvalid(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := newTestService(t, "right", time.Hour, issuedAt).Issue("u")
	require.NoError(t, err)

	_, err = newTestService(t, "wrong", time.Hour, issuedAt.Add(48*time.Hour)).Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenInvalid, "claims are not trusted before the signature")
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	s := newTestService(t, "secret", time.Hour, time.Now())
	tok, err := s.Issue("victim")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"attacker","exp":4102444800}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	_, err = s.Verify(tampered)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	_, err = s.Verify(parts[0] + "." + parts[1] + "." + string(sig))
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerify_AlteredTrailingBits(t *testing.T) {
	t.Parallel()

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	flipLast := func(seg string) string {
		idx := strings.IndexByte(alphabet, seg[len(seg)-1])
		return seg[:len(seg)-1] + string(alphabet[idx^1])
	}

	s := newTestService(t, "secret", time.Hour, time.Now())
	for i := 0; i < 50; i++ {
		tok, err := s.Issue(fmt.Sprintf("victim-%d", i))
		require.NoError(t, err)
		parts := strings.Split(tok, ".")
		require.Len(t, parts, 3)

		_, err = s.Verify(parts[0] + "." + parts[1] + "." + flipLast(parts[2]))
		assert.ErrorIs(t, err, common.ErrTokenInvalid, "signature %s", parts[2])
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	s := newTestService(t, "secret", time.Hour, time.Now())
	for _, tok := range []string{"", "not-a-jwt", "a.b", "###.###.###"} {
		_, err := s.Verify(tok)
		assert.ErrorIs(t, err, common.ErrTokenMalformed, tok)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := newTestService(t, "secret", time.Hour, now)
	claims := jwt.RegisteredClaims{Subject: "u", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Verify(hs512)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(none)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestVerify_MissingSubjectOrExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := newTestService(t, "secret", time.Hour, now)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Verify(noSub)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.RegisteredClaims{Subject: "u"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Verify(noExp)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}
