package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "drsmith", "DOCTOR")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "drsmith", claims.Username)
	assert.Equal(t, "DOCTOR", claims.Role)
	assert.Equal(t, "pharmacy-api", claims.Issuer)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	token, err := GenerateToken(1, "admin", "ADMIN")
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pill")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pill", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pill"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
