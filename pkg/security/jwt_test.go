package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)
	return m
}

func TestNewJWTManager_Validation(t *testing.T) {
	_, err := NewJWTManager(&JWTConfig{})
	assert.ErrorIs(t, err, ErrSecretKeyEmpty)

	_, err = NewJWTManager(&JWTConfig{SecretKey: "x", Algorithm: "none"})
	assert.ErrorIs(t, err, ErrAlgorithmInvalid)
}

func TestJWT_RoundTripCaller(t *testing.T) {
	m := newManager(t)
	in := Caller{UserID: 123456789012345678, GuildID: 42, Username: "alice", Roles: []string{RoleAdmin}}

	token, err := m.GenerateToken(&Claims{Payload: in.Payload()})
	require.NoError(t, err)

	claims, err := m.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "coinbot-gateway", claims.Issuer)
	assert.Equal(t, "alice", claims.Get("username"))

	out, err := CallerFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.True(t, out.HasRole(RoleAdmin))
	assert.False(t, out.HasRole("moderator"))
}

func TestJWT_Errors(t *testing.T) {
	m := newManager(t)

	expired, err := m.GenerateToken(&Claims{
		Payload:          map[string]any{"uid": "1"},
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	other, err := NewJWTManager(&JWTConfig{SecretKey: "other-secret"})
	require.NoError(t, err)
	foreign, err := other.GenerateToken(&Claims{Payload: map[string]any{"uid": "1"}})
	require.NoError(t, err)
	_, err = m.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCallerFromClaims_MissingUser(t *testing.T) {
	_, err := CallerFromClaims(&Claims{Payload: map[string]any{"username": "bob"}})
	assert.ErrorIs(t, err, ErrCallerMissing)
}

func TestCallerContext(t *testing.T) {
	_, ok := CallerFrom(context.Background())
	assert.False(t, ok)

	ctx := WithCaller(context.Background(), Caller{UserID: 7})
	c, ok := CallerFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, uint64(7), c.UserID)
}

func TestClaims_GetNested(t *testing.T) {
	c := &Claims{Payload: map[string]any{"guild": map[string]any{"name": "casino"}}}
	assert.Equal(t, "casino", c.Get("guild.name"))
	assert.Nil(t, c.Get("guild.missing.deep"))
}
