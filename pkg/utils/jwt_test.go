package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "repurpose-ai")

	pair, err := m.GenerateTokenPair("u1", "user", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", access.UserID)
	assert.Equal(t, "user", access.Role)
	assert.Equal(t, "access", access.Type)
	assert.Equal(t, "repurpose-ai", access.Issuer)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", "repurpose-ai")
	verifier := NewJWTManager("secret-b", "repurpose-ai")

	token, err := issuer.GenerateToken("u1", "user", "access", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret", "repurpose-ai")

	token, err := m.GenerateToken("u1", "user", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", "repurpose-ai")

	_, err := m.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
