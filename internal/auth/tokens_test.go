package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSignAccess_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", 15*time.Minute, 30*24*time.Hour, nil)

	token, err := codec.SignAccess("user-1", "buyer")
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "buyer", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestSignRefresh_CarriesJTI(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec("test-secret", 15*time.Minute, 30*24*time.Hour, fixedClock(now))

	token, jti, expiresAt, err := codec.SignRefresh("user-1", "seller")
	require.NoError(t, err)
	require.NotEmpty(t, jti)
	assert.Equal(t, now.Add(30*24*time.Hour), expiresAt)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.Equal(t, jti, claims.ID)

	// jti уникален для каждого выпуска
	_, jti2, _, err := codec.SignRefresh("user-1", "seller")
	require.NoError(t, err)
	assert.NotEqual(t, jti, jti2)
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signer := NewTokenCodec("test-secret", 15*time.Minute, time.Hour, fixedClock(issued))

	token, err := signer.SignAccess("user-1", "buyer")
	require.NoError(t, err)

	// Через 16 минут access-токен мертв
	verifier := NewTokenCodec("test-secret", 15*time.Minute, time.Hour, fixedClock(issued.Add(16*time.Minute)))
	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	codec := NewTokenCodec("secret-a", 15*time.Minute, time.Hour, nil)
	other := NewTokenCodec("secret-b", 15*time.Minute, time.Hour, nil)

	token, err := codec.SignAccess("user-1", "buyer")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_Garbage(t *testing.T) {
	codec := NewTokenCodec("test-secret", 15*time.Minute, time.Hour, nil)
	_, err := codec.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("some-token")
	h2 := HashToken("some-token")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // sha256 hex
	assert.NotEqual(t, h1, HashToken("other-token"))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("long-enough-password"))
}
