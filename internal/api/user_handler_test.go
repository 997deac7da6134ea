package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AllexanderGM/feeling-sub000/internal/api/shared"
	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/mocks"
	authsvc "github.com/AllexanderGM/feeling-sub000/internal/service/auth"
	"github.com/AllexanderGM/feeling-sub000/internal/service/usercache"
)

type userHandlerFixture struct {
	handler    *UserHandler
	userStore  *mocks.MockUserStore
	tokenStore *mocks.MockTokenStore
	cache      *usercache.Cache
}

func newUserHandlerFixture(t *testing.T) *userHandlerFixture {
	t.Helper()

	userStore := mocks.NewMockUserStore()
	tokenStore := mocks.NewMockTokenStore()
	cache := usercache.New(userStore, time.Minute, 16)

	return &userHandlerFixture{
		handler:    NewUserHandler(userStore, tokenStore, authsvc.NewBcryptVerifier(4), cache),
		userStore:  userStore,
		tokenStore: tokenStore,
		cache:      cache,
	}
}

// chiRequest builds a request routed through chi so URL parameters resolve.
func chiRequest(method, path, paramKey, paramValue string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(paramKey, paramValue)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func withPrincipal(req *http.Request, email string, authorities ...string) *http.Request {
	if len(authorities) == 0 {
		authorities = []string{"ROLE_CLIENT"}
	}
	return req.WithContext(shared.WithPrincipal(req.Context(), &shared.Principal{
		Email:       email,
		Authorities: authorities,
	}))
}

func TestUserHandler_GetProfile(t *testing.T) {
	t.Parallel()

	f := newUserHandlerFixture(t)
	f.userStore.Seed(&domain.User{
		ID:       1,
		Email:    "user@example.com",
		Role:     domain.RoleClient,
		Enabled:  true,
		Verified: true,
	})

	req := withPrincipal(
		httptest.NewRequest(http.MethodGet, "/api/users/me", nil),
		"user@example.com",
	)
	rec := httptest.NewRecorder()
	f.handler.GetProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user@example.com", resp.Email)
	assert.Equal(t, "CLIENT", resp.Role)
}

func TestUserHandler_GetProfileRequiresPrincipal(t *testing.T) {
	t.Parallel()

	f := newUserHandlerFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	f.handler.GetProfile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_UpdatePasswordRevokesTokens(t *testing.T) {
	t.Parallel()

	f := newUserHandlerFixture(t)
	f.userStore.Seed(&domain.User{
		ID:             1,
		Email:          "user@example.com",
		HashedPassword: "$2a$10$oldhash",
		Role:           domain.RoleClient,
		Enabled:        true,
	})
	f.tokenStore.Seed(&domain.PersistedToken{
		Token:     "live-access",
		UserID:    1,
		Email:     "user@example.com",
		Kind:      domain.TokenKindAccess,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	body, err := json.Marshal(UpdateProfileRequest{Password: "new-password-123"})
	require.NoError(t, err)

	req := chiRequest(http.MethodPut, "/api/users/user@example.com",
		"email", "user@example.com", body)
	rec := httptest.NewRecorder()
	f.handler.UpdateUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	record, err := f.tokenStore.FindByToken(context.Background(), "live-access")
	require.NoError(t, err)
	assert.True(t, record.Revoked)

	updated, err := f.userStore.GetByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "$2a$10$oldhash", updated.HashedPassword)
}

func TestUserHandler_UpdateEmailEvictsBothEntries(t *testing.T) {
	t.Parallel()

	f := newUserHandlerFixture(t)
	f.userStore.Seed(&domain.User{
		ID:             1,
		Email:          "old@example.com",
		HashedPassword: "$2a$10$hash",
		Role:           domain.RoleClient,
		Enabled:        true,
	})

	// Prime the cache under the old address.
	_, err := f.cache.FindByEmail(context.Background(), "old@example.com")
	require.NoError(t, err)

	body, err := json.Marshal(UpdateProfileRequest{Email: "new@example.com"})
	require.NoError(t, err)

	req := chiRequest(http.MethodPut, "/api/users/old@example.com",
		"email", "old@example.com", body)
	rec := httptest.NewRecorder()
	f.handler.UpdateUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// The cache no longer serves the stale record under either key.
	_, err = f.cache.FindByEmail(context.Background(), "old@example.com")
	assert.Error(t, err)
	fresh, err := f.cache.FindByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", fresh.Email)
}

func TestUserHandler_UpdateUnknownUser(t *testing.T) {
	t.Parallel()

	f := newUserHandlerFixture(t)
	body, err := json.Marshal(UpdateProfileRequest{Email: "new@example.com"})
	require.NoError(t, err)

	req := chiRequest(http.MethodPut, "/api/users/ghost@example.com",
		"email", "ghost@example.com", body)
	rec := httptest.NewRecorder()
	f.handler.UpdateUser(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandler_DeleteUser(t *testing.T) {
	t.Parallel()

	f := newUserHandlerFixture(t)
	f.userStore.Seed(&domain.User{
		ID:             1,
		Email:          "user@example.com",
		HashedPassword: "$2a$10$hash",
		Role:           domain.RoleClient,
	})

	req := chiRequest(http.MethodDelete, "/api/users/user@example.com",
		"email", "user@example.com", nil)
	rec := httptest.NewRecorder()
	f.handler.DeleteUser(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	_, err := f.userStore.GetByEmail(context.Background(), "user@example.com")
	assert.Error(t, err)
}

func TestUserHandler_CompleteProfile(t *testing.T) {
	t.Parallel()

	f := newUserHandlerFixture(t)
	f.userStore.Seed(&domain.User{
		ID:             1,
		Email:          "new@example.com",
		HashedPassword: "$2a$10$hash",
		Role:           domain.RoleClient,
		Verified:       true,
	})

	body, err := json.Marshal(CompleteProfileRequest{
		DisplayName: "Alex",
		Birthdate:   "1995-04-12",
	})
	require.NoError(t, err)

	req := withPrincipal(
		httptest.NewRequest(http.MethodPost, "/api/users/complete-profile",
			bytes.NewReader(body)),
		"new@example.com",
	)
	rec := httptest.NewRecorder()
	f.handler.CompleteProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ProfileComplete)
}

func TestUserHandler_SetLocked(t *testing.T) {
	t.Parallel()

	f := newUserHandlerFixture(t)
	f.userStore.Seed(&domain.User{
		ID:             1,
		Email:          "user@example.com",
		HashedPassword: "$2a$10$hash",
		Role:           domain.RoleClient,
		Enabled:        true,
	})

	req := chiRequest(http.MethodPost, "/api/admin/users/user@example.com/lock",
		"email", "user@example.com", nil)
	rec := httptest.NewRecorder()
	f.handler.SetLocked(true)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	locked, err := f.userStore.GetByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.True(t, locked.AccountLocked)

	req = chiRequest(http.MethodPost, "/api/admin/users/user@example.com/unlock",
		"email", "user@example.com", nil)
	rec = httptest.NewRecorder()
	f.handler.SetLocked(false)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	unlocked, err := f.userStore.GetByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.False(t, unlocked.AccountLocked)
}
