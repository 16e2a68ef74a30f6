package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/backend/internal/infrastructure/config"
)

func testJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough-32",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "opsboard-test",
		MaxRefreshCount:        2,
	})
}

var testSubject = Subject{UserID: "u-ana", Username: "ana", Role: "BRANCH_MANAGER", LocationID: "loc-nampula"}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := testJWTService()
	pair, err := svc.GenerateTokenPair(testSubject)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-ana", claims.UserID)
	assert.Equal(t, "BRANCH_MANAGER", claims.Role)
	assert.Equal(t, "loc-nampula", claims.LocationID)
	assert.Equal(t, "opsboard-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestJWTService_Errors(t *testing.T) {
	svc := testJWTService()

	_, err := svc.GenerateTokenPair(Subject{})
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-entirely-different", AccessTokenExpiration: time.Minute, RefreshTokenExpiration: time.Hour})
	pair, err := other.GenerateTokenPair(testSubject)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	t.Run("expired", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(testSubject)
		require.NoError(t, err)
		svc.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { svc.now = time.Now }()
		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestJWTService_Refresh(t *testing.T) {
	svc := testJWTService()
	pair, err := svc.GenerateTokenPair(testSubject)
	require.NoError(t, err)

	moved := testSubject
	moved.LocationID = "loc-beira"
	refreshed, err := svc.RefreshTokenPair(pair.RefreshToken, moved)
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "loc-beira", claims.LocationID)

	rc, err := svc.ValidateRefreshToken(refreshed.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, rc.RefreshCount)

	again, err := svc.RefreshTokenPair(refreshed.RefreshToken, moved)
	require.NoError(t, err)
	_, err = svc.RefreshTokenPair(again.RefreshToken, moved)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)

	_, err = svc.RefreshTokenPair(pair.RefreshToken, Subject{UserID: "u-other"})
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestClaims_RemainingTTL(t *testing.T) {
	svc := testJWTService()
	pair, err := svc.GenerateTokenPair(testSubject)
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	now := time.Now()
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.RemainingTTL(now).Seconds(), 5)
	assert.Zero(t, claims.RemainingTTL(now.Add(time.Hour)))
	assert.False(t, claims.IssuedAtTime().IsZero())
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryTokenBlacklist()
	now := time.Now()
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Minute))
	require.NoError(t, bl.AddToBlacklist(ctx, "jti-0", 0))

	ok, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = bl.IsBlacklisted(ctx, "jti-0")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = bl.IsBlacklisted(ctx, "jti-1")
	assert.False(t, ok)
}
