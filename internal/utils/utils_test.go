package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 9, "OPERATOR", 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (any, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.EqualValues(t, 9, claims["sub"])
	assert.Equal(t, "OPERATOR", claims["role"])
	assert.Equal(t, jwt.SigningMethodHS256.Alg(), parsed.Method.Alg())
}

func TestHashAndVerifyKey(t *testing.T) {
	h, err := HashKey("gate-key", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "gate-key", h)
	assert.True(t, VerifyKey(h, "gate-key"))
	assert.False(t, VerifyKey(h, "other"))
	assert.False(t, VerifyKey("not-a-hash", "gate-key"))
}
