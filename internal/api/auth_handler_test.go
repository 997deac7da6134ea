package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AllexanderGM/feeling-sub000/internal/api/shared"
	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/mocks"
	authsvc "github.com/AllexanderGM/feeling-sub000/internal/service/auth"
	"github.com/AllexanderGM/feeling-sub000/internal/service/usercache"
)

type authHandlerFixture struct {
	handler    *AuthHandler
	userStore  *mocks.MockUserStore
	tokenStore *mocks.MockTokenStore
	jwtService *mocks.MockJWTService
	verifier   *authsvc.BcryptVerifier
}

func newAuthHandlerFixture(t *testing.T) *authHandlerFixture {
	t.Helper()

	userStore := mocks.NewMockUserStore()
	tokenStore := mocks.NewMockTokenStore()
	jwtService := &mocks.MockJWTService{
		Token:        "issued-access",
		RefreshToken: "issued-refresh",
		Binding:      true,
	}
	verifier := authsvc.NewBcryptVerifier(4)

	return &authHandlerFixture{
		handler: NewAuthHandler(
			userStore, tokenStore, jwtService,
			verifier, verifier,
			usercache.New(userStore, time.Minute, 16),
		),
		userStore:  userStore,
		tokenStore: tokenStore,
		jwtService: jwtService,
		verifier:   verifier,
	}
}

func (f *authHandlerFixture) seedAccount(t *testing.T, email, password string) *domain.User {
	t.Helper()
	hashed, err := f.verifier.Hash(password)
	require.NoError(t, err)
	user := &domain.User{
		Email:          email,
		HashedPassword: hashed,
		Role:           domain.RoleClient,
		Enabled:        true,
		Verified:       true,
	}
	f.userStore.Seed(user)
	return user
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	f := newAuthHandlerFixture(t)
	rec := postJSON(t, f.handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, "issued-access", resp.Token)
	assert.Equal(t, "issued-refresh", resp.RefreshToken)
	assert.NotZero(t, resp.UserID)

	// Both token kinds were persisted.
	access, err := f.tokenStore.FindByToken(context.Background(), "issued-access")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenKindAccess, access.Kind)
	refresh, err := f.tokenStore.FindByToken(context.Background(), "issued-refresh")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenKindRefresh, refresh.Kind)

	// The stored record carries a hash, never the plaintext.
	stored, err := f.userStore.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.Password)
	assert.NotEmpty(t, stored.HashedPassword)
	assert.NotEqual(t, "password123", stored.HashedPassword)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "password123"}},
		{"malformed email", RegisterRequest{Email: "nope", Password: "password123"}},
		{"short password", RegisterRequest{Email: "a@b.com", Password: "short"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAuthHandlerFixture(t)
			rec := postJSON(t, f.handler.Register, "/api/auth/register", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAuthHandler_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newAuthHandlerFixture(t)
	f.seedAccount(t, "taken@example.com", "password123")

	rec := postJSON(t, f.handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	f := newAuthHandlerFixture(t)
	user := f.seedAccount(t, "user@example.com", "password123")

	// A stale token from an earlier session gets revoked by the login.
	f.tokenStore.Seed(&domain.PersistedToken{
		Token:     "stale-access",
		UserID:    user.ID,
		Email:     user.Email,
		Kind:      domain.TokenKindAccess,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	rec := postJSON(t, f.handler.Login, "/api/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "issued-access", resp.Token)

	stale, err := f.tokenStore.FindByToken(context.Background(), "stale-access")
	require.NoError(t, err)
	assert.True(t, stale.Revoked)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		seed     func(t *testing.T, f *authHandlerFixture)
		req      LoginRequest
		wantCode int
	}{
		{
			name:     "unknown email",
			seed:     func(t *testing.T, f *authHandlerFixture) {},
			req:      LoginRequest{Email: "ghost@example.com", Password: "password123"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong password",
			seed: func(t *testing.T, f *authHandlerFixture) {
				f.seedAccount(t, "user@example.com", "password123")
			},
			req:      LoginRequest{Email: "user@example.com", Password: "wrong-password"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "locked account",
			seed: func(t *testing.T, f *authHandlerFixture) {
				u := f.seedAccount(t, "user@example.com", "password123")
				u.AccountLocked = true
			},
			req:      LoginRequest{Email: "user@example.com", Password: "password123"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "disabled account",
			seed: func(t *testing.T, f *authHandlerFixture) {
				u := f.seedAccount(t, "user@example.com", "password123")
				u.Enabled = false
			},
			req:      LoginRequest{Email: "user@example.com", Password: "password123"},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAuthHandlerFixture(t)
			tt.seed(t, f)

			rec := postJSON(t, f.handler.Login, "/api/auth/login", tt.req)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Parallel()

	f := newAuthHandlerFixture(t)
	user := f.seedAccount(t, "user@example.com", "password123")

	f.jwtService.Claims = &authsvc.Claims{
		Email: user.Email,
		Kind:  domain.TokenKindRefresh,
	}
	f.tokenStore.Seed(&domain.PersistedToken{
		Token:     "old-refresh",
		UserID:    user.ID,
		Email:     user.Email,
		Kind:      domain.TokenKindRefresh,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})

	rec := postJSON(t, f.handler.Refresh, "/api/auth/refresh", RefreshRequest{
		RefreshToken: "old-refresh",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	// Rotation: the presented refresh token is revoked by a successful
	// refresh.
	old, err := f.tokenStore.FindByToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.True(t, old.Revoked)
}

func TestAuthHandler_RefreshFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(f *authHandlerFixture, user *domain.User)
	}{
		{
			name: "invalid token",
			mutate: func(f *authHandlerFixture, user *domain.User) {
				f.jwtService.Claims = nil
				f.jwtService.ValidateErr = authsvc.ErrInvalidToken
			},
		},
		{
			name: "revoked record",
			mutate: func(f *authHandlerFixture, user *domain.User) {
				f.tokenStore.Seed(&domain.PersistedToken{
					Token:     "old-refresh",
					UserID:    user.ID,
					Email:     user.Email,
					Kind:      domain.TokenKindRefresh,
					Revoked:   true,
					ExpiresAt: time.Now().Add(24 * time.Hour),
				})
			},
		},
		{
			name: "access kind record",
			mutate: func(f *authHandlerFixture, user *domain.User) {
				f.tokenStore.Seed(&domain.PersistedToken{
					Token:     "old-refresh",
					UserID:    user.ID,
					Email:     user.Email,
					Kind:      domain.TokenKindAccess,
					ExpiresAt: time.Now().Add(24 * time.Hour),
				})
			},
		},
		{
			name: "stale binding",
			mutate: func(f *authHandlerFixture, user *domain.User) {
				f.jwtService.Binding = false
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAuthHandlerFixture(t)
			user := f.seedAccount(t, "user@example.com", "password123")
			f.jwtService.Claims = &authsvc.Claims{
				Email: user.Email,
				Kind:  domain.TokenKindRefresh,
			}
			f.tokenStore.Seed(&domain.PersistedToken{
				Token:     "old-refresh",
				UserID:    user.ID,
				Email:     user.Email,
				Kind:      domain.TokenKindRefresh,
				ExpiresAt: time.Now().Add(24 * time.Hour),
			})
			tt.mutate(f, user)

			rec := postJSON(t, f.handler.Refresh, "/api/auth/refresh", RefreshRequest{
				RefreshToken: "old-refresh",
			})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Parallel()

	f := newAuthHandlerFixture(t)
	user := f.seedAccount(t, "user@example.com", "password123")
	f.tokenStore.Seed(&domain.PersistedToken{
		Token:     "live-access",
		UserID:    user.ID,
		Email:     user.Email,
		Kind:      domain.TokenKindAccess,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = req.WithContext(shared.WithPrincipal(req.Context(), &shared.Principal{
		Email:       user.Email,
		Authorities: []string{"ROLE_CLIENT"},
	}))
	rec := httptest.NewRecorder()
	f.handler.Logout(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	record, err := f.tokenStore.FindByToken(context.Background(), "live-access")
	require.NoError(t, err)
	assert.True(t, record.Revoked)
}

func TestAuthHandler_LogoutWithoutPrincipal(t *testing.T) {
	t.Parallel()

	f := newAuthHandlerFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	f.handler.Logout(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_OAuthEntry(t *testing.T) {
	t.Parallel()

	f := newAuthHandlerFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", nil)
	rec := httptest.NewRecorder()
	f.handler.OAuthEntry(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
