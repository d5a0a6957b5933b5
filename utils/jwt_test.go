package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	tok, err := GenerateToken("42", RoleStaff)
	require.NoError(t, err)

	claims, err := VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, RoleStaff, claims.Role)
	assert.Equal(t, "rental-server", claims.Issuer)

	t.Setenv("JWT_SECRET", "rotated")
	_, err = VerifyToken(tok)
	assert.Error(t, err)

	_, err = VerifyToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := GenerateToken("1", RoleUser)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
	assert.False(t, CheckPassword("", "password123"))
}
