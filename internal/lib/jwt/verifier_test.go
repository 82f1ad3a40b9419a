package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func signToken(t *testing.T, secret string, claims SessionClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifier_ValidToken(t *testing.T) {
	verifier := NewVerifier(testSecret)

	tokenStr := signToken(t, testSecret, SessionClaims{
		Email: "prof@coursgen.fr",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-uid-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := verifier.VerifyToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "user-uid-1", claims.Subject)
	assert.Equal(t, "prof@coursgen.fr", claims.Email)
}

func TestVerifier_InvalidCases(t *testing.T) {
	verifier := NewVerifier(testSecret)

	expired := signToken(t, testSecret, SessionClaims{
		Email: "prof@coursgen.fr",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-uid-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	wrongKey := signToken(t, "another_secret_key", SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-uid-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noSubject := signToken(t, testSecret, SessionClaims{
		Email: "prof@coursgen.fr",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired token", token: expired},
		{name: "wrong signing key", token: wrongKey},
		{name: "missing subject", token: noSubject},
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
