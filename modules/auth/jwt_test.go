package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() JWTConfig {
	return JWTConfig{
		SecretKey:     "test-secret-key",
		TokenDuration: 15 * time.Minute,
		Issuer:        "test-issuer",
	}
}

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, int64(900), manager.TokenDuration())
}

func TestJWTManager_RejectsBadTokens(t *testing.T) {
	manager := NewJWTManager(testConfig())

	other := testConfig()
	other.SecretKey = "another-secret"
	foreign, err := NewJWTManager(other).GenerateToken("mallory")
	require.NoError(t, err)

	otherIssuer := testConfig()
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, err := NewJWTManager(otherIssuer).GenerateToken("mallory")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"wrong secret", foreign},
		{"wrong issuer", wrongIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager(testConfig())
	manager.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := manager.GenerateToken("bob")
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
