package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseJWT(t *testing.T) {
	tok, err := GenerateJWT(42, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok, err := GenerateJWT(1, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(tok, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWT_Expired(t *testing.T) {
	tok, err := GenerateJWT(1, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(tok, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseJWT_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: 1}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseJWT(tok, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWT_RequiresUserID(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseJWT(tok, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretRefused(t *testing.T) {
	_, err := GenerateJWT(1, "", time.Hour)
	assert.Error(t, err)
	_, err = ParseJWT("x.y.z", "")
	assert.Error(t, err)
}
