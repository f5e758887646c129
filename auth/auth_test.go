package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate(Claims{UserID: "u1", Username: "asha"})
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "asha", claims.Username)
	assert.Equal(t, "u1", claims.Subject)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, err := other.Generate(Claims{UserID: "u1"})
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = m.Validate("")
	assert.True(t, errors.Is(err, ErrMissingToken))

	_, err = m.Validate("not-a-token")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Generate(Claims{UserID: "u1"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenManager_PairUsesSeparateSecrets(t *testing.T) {
	tm := NewTokenManager("access", time.Hour, "refresh", 10*time.Hour)

	access, refresh, err := tm.Pair("u1", "asha", "asha@example.com")
	require.NoError(t, err)

	_, err = tm.Access.Validate(access)
	assert.NoError(t, err)
	_, err = tm.Refresh.Validate(refresh)
	assert.NoError(t, err)

	_, err = tm.Access.Validate(refresh)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}
