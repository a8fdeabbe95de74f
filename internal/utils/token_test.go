package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	tok, err := NewAdminToken("test-secret", 15)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)

	assert.NoError(t, VerifyAdminToken("test-secret", tok.Token))
}

func TestAdminTokenWrongSecret(t *testing.T) {
	tok, err := NewAdminToken("test-secret", 15)
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyAdminToken("other-secret", tok.Token), ErrInvalidToken)
}

func TestAdminTokenExpired(t *testing.T) {
	tok, err := NewAdminToken("test-secret", -1)
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyAdminToken("test-secret", tok.Token), ErrInvalidToken)
}

func TestAdminTokenGarbage(t *testing.T) {
	assert.ErrorIs(t, VerifyAdminToken("test-secret", "not-a-jwt"), ErrInvalidToken)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("swordfish", 4)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "swordfish"))
	assert.False(t, VerifyPassword(hash, "Swordfish"))
	assert.False(t, VerifyPassword("not-a-hash", "swordfish"))
}
