package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AllexanderGM/feeling-sub000/internal/config"
	"github.com/AllexanderGM/feeling-sub000/internal/domain"
)

const testSecret = "test-secret-key-that-is-long-enough!"

func newTestService(t *testing.T) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 24 * 60,
	})
	require.NoError(t, err)
	return svc.(*hmacJWTService)
}

func testUser() *domain.User {
	return &domain.User{
		ID:             1,
		Email:          "user@example.com",
		HashedPassword: "$2a$10$somebcrypthashvalue",
		Role:           domain.RoleClient,
		Enabled:        true,
		Verified:       true,
	}
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "too-short"})
	assert.Error(t, err)
}

func TestJWTService_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	user := testUser()

	token, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.ExtractSubject(token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, subject)

	kind, err := svc.ExtractKind(token)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenKindAccess, kind)

	assert.True(t, svc.VerifyBinding(token, user))
}

func TestJWTService_KindSeparation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	user := testUser()

	access, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(context.Background(), user)
	require.NoError(t, err)

	kind, err := svc.ExtractKind(refresh)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenKindRefresh, kind)

	// An access token is not a valid refresh token.
	_, err = svc.ValidateRefreshToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrWrongTokenKind)

	claims, err := svc.ValidateRefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, domain.TokenKindRefresh, claims.Kind)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_Expiry(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	user := testUser()

	issuedAt := time.Now()
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)

	// Within lifetime plus skew the token parses.
	svc.timeFunc = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	_, err = svc.ExtractSubject(token)
	assert.NoError(t, err)

	// Past lifetime plus skew it is expired.
	svc.timeFunc = func() time.Time { return issuedAt.Add(63 * time.Minute) }
	_, err = svc.ExtractSubject(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ClockSkewTolerance(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	user := testUser()

	issuedAt := time.Now()
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)

	// One minute past expiry is inside the two minute skew allowance.
	svc.timeFunc = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	_, err = svc.ExtractSubject(token)
	assert.NoError(t, err)
}

func TestJWTService_TamperedTokenRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	token, err := svc.GenerateToken(context.Background(), testUser())
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = svc.ExtractSubject(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongKeyRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	token, err := svc.GenerateToken(context.Background(), testUser())
	require.NoError(t, err)

	other, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   "another-secret-key-that-is-long-enough",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 24 * 60,
	})
	require.NoError(t, err)

	_, err = other.ExtractSubject(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// Tokens issued before a password change carry the old binding and must
// fail verification against the updated record.
func TestJWTService_BindingRotatesWithPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	user := testUser()

	token, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)
	require.True(t, svc.VerifyBinding(token, user))

	rotated := *user
	rotated.HashedPassword = "$2a$10$completelydifferenthash"
	assert.False(t, svc.VerifyBinding(token, &rotated))
}

func TestJWTService_GarbageInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not a jwt", "hello world"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.ExtractSubject(tt.token)
			assert.Error(t, err)

			_, err = svc.ExtractKind(tt.token)
			assert.Error(t, err)

			assert.False(t, svc.VerifyBinding(tt.token, testUser()))
		})
	}
}

func TestJWTService_Lifetimes(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	assert.Equal(t, time.Hour, svc.AccessTokenLifetime())
	assert.Equal(t, 24*time.Hour, svc.RefreshTokenLifetime())
}
