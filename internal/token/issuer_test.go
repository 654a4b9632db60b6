package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, raw string, key string, now time.Time) *Claims {
	t.Helper()
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tk *jwt.Token) (any, error) {
		return []byte(key), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	require.True(t, tok.Valid)
	return claims
}

func TestMint(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	iss, err := NewIssuer(Config{Key: "test-key-0123456789", Issuer: "hcagents", Audience: "hcagents-web", ExpirationMinutes: 30}, clock)
	require.NoError(t, err)

	raw, err := iss.Mint("acc-1", "u@x.com")
	require.NoError(t, err)

	c := parse(t, raw, "test-key-0123456789", now)
	assert.Equal(t, "acc-1", c.Subject)
	assert.Equal(t, "u@x.com", c.Email)
	assert.Equal(t, "hcagents", c.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"hcagents-web"}, c.Audience)
	assert.Equal(t, now.Unix(), c.IssuedAt.Unix())
	assert.Equal(t, now.Unix(), c.NotBefore.Unix())
	assert.Equal(t, now.Add(30*time.Minute).Unix(), c.ExpiresAt.Unix())
}

func TestMintExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer(Config{Key: "k", ExpirationMinutes: 1}, clockwork.NewFakeClockAt(now))
	require.NoError(t, err)
	raw, err := iss.Mint("acc-1", "u@x.com")
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) { return []byte("k"), nil },
		jwt.WithTimeFunc(func() time.Time { return now.Add(2 * time.Minute) }))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestMintRejectsOtherKey(t *testing.T) {
	iss, err := NewIssuer(Config{Key: "right"}, nil)
	require.NoError(t, err)
	raw, err := iss.Mint("acc-1", "u@x.com")
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) { return []byte("wrong"), nil })
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestNewIssuerRequiresKey(t *testing.T) {
	_, err := NewIssuer(Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingKey)
}
