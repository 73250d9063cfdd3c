package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret, tokenType string, expiresAt time.Time) string {
	t.Helper()

	claims := Claims{
		UserID: "3f6d3f1e-7f5a-4a4e-9d3e-111111111111",
		Email:  "staff@example.com",
		Role:   "admin",
		Type:   tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateAccessToken(t *testing.T) {
	m := NewManager(testSecret)
	token := signToken(t, testSecret, "access", time.Now().Add(time.Hour))

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	m := NewManager(testSecret)
	token := signToken(t, "some-other-secret", "access", time.Now().Add(time.Hour))

	_, err := m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	m := NewManager(testSecret)
	token := signToken(t, testSecret, "access", time.Now().Add(-time.Minute))

	_, err := m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsRefreshType(t *testing.T) {
	m := NewManager(testSecret)
	token := signToken(t, testSecret, "refresh", time.Now().Add(time.Hour))

	_, err := m.ValidateAccessToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected access")
}
