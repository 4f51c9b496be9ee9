package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hash)

	assert.NoError(t, VerifyPassword(hash, "correct-horse-battery"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestHashPasswordRejectsShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	ti, err := NewTokenIssuer("test-secret", time.Minute)
	require.NoError(t, err)

	token, err := ti.Issue("reef@example.com")
	require.NoError(t, err)

	email, err := ti.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "reef@example.com", email)
}

func TestTokenExpired(t *testing.T) {
	ti, err := NewTokenIssuer("test-secret", time.Nanosecond)
	require.NoError(t, err)

	token, err := ti.Issue("reef@example.com")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = ti.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	a, _ := NewTokenIssuer("secret-a", time.Minute)
	b, _ := NewTokenIssuer("secret-b", time.Minute)

	token, err := a.Issue("reef@example.com")
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	ti, _ := NewTokenIssuer("test-secret", time.Minute)
	for _, s := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ti.Verify(s)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", s)
	}
}

func TestNewTokenIssuerValidation(t *testing.T) {
	_, err := NewTokenIssuer("", time.Minute)
	assert.Error(t, err)
	_, err = NewTokenIssuer("x", 0)
	assert.Error(t, err)
}

func TestNewShareToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := NewShareToken()
		require.NoError(t, err)
		assert.Len(t, tok, 16)
		assert.False(t, seen[tok], "duplicate share token")
		seen[tok] = true
	}
}
