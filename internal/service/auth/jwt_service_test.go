package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-long-enough-for-hmac",
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60 * 24,
	}
}

func newTestJWTService(t *testing.T) *hmacJWTService {
	t.Helper()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	impl, ok := svc.(*hmacJWTService)
	require.True(t, ok)
	return impl
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	cfg := testAuthConfig()
	cfg.JWTSecret = "too-short"

	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, time.Minute)
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenTypeRefresh, claims.TokenType)
}

func TestJWTService_WrongTokenType(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()

	access, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(ctx, access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()

	issuedAt := time.Now().Add(-48 * time.Hour)
	svc.timeFunc = func() time.Time { return issuedAt }

	access, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, uuid.New())
	require.NoError(t, err)

	// Validate against the real clock, well past lifetime plus clock skew.
	svc.timeFunc = time.Now

	_, err = svc.ValidateToken(ctx, access)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = svc.ValidateRefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}

func TestJWTService_ClockSkewTolerated(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	// A validator running one minute past expiry is inside the skew window.
	svc.timeFunc = func() time.Time { return time.Now().Add(16 * time.Minute) }

	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err)
}

func TestJWTService_InvalidTokens(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t)
	ctx := context.Background()

	t.Run("garbage input", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ValidateToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		t.Parallel()

		otherCfg := testAuthConfig()
		otherCfg.JWTSecret = "another-secret-key-thats-long-enough-too"
		other, err := NewJWTService(otherCfg)
		require.NoError(t, err)

		token, err := other.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()

		token, err := svc.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token+"x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBcryptVerifier(t *testing.T) {
	t.Parallel()

	verifier := NewBcryptVerifier()

	hash, err := verifier.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, verifier.Compare(hash, "correct horse battery staple"))
	assert.Error(t, verifier.Compare(hash, "wrong password"))
}
