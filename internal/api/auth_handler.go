package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AllexanderGM/feeling-sub000/internal/api/shared"
	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/service/auth"
	"github.com/AllexanderGM/feeling-sub000/internal/service/usercache"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	tokenStore       store.TokenStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	passwordHasher   auth.PasswordHasher
	userCache        *usercache.Cache
	validator        *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	tokenStore store.TokenStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	passwordHasher auth.PasswordHasher,
	userCache *usercache.Cache,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		tokenStore:       tokenStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		passwordHasher:   passwordHasher,
		userCache:        userCache,
		validator:        validator.New(),
	}
}

// issueTokens generates and persists an access/refresh token pair.
func (h *AuthHandler) issueTokens(
	ctx context.Context,
	user *domain.User,
) (access, refresh string, err error) {
	access, err = h.jwtService.GenerateToken(ctx, user)
	if err != nil {
		return "", "", err
	}
	refresh, err = h.jwtService.GenerateRefreshToken(ctx, user)
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	records := []*domain.PersistedToken{
		{
			Token:     access,
			UserID:    user.ID,
			Email:     user.Email,
			Kind:      domain.TokenKindAccess,
			ExpiresAt: now.Add(h.jwtService.AccessTokenLifetime()),
			CreatedAt: now,
		},
		{
			Token:     refresh,
			UserID:    user.ID,
			Email:     user.Email,
			Kind:      domain.TokenKindRefresh,
			ExpiresAt: now.Add(h.jwtService.RefreshTokenLifetime()),
			CreatedAt: now,
		},
	}
	for _, record := range records {
		if err := h.tokenStore.Save(ctx, record); err != nil {
			return "", "", err
		}
	}
	return access, refresh, nil
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := domain.NewUser(req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user data: "+err.Error())
		return
	}

	hashed, err := h.passwordHasher.Hash(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		slog.Error("failed to create user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	access, refresh, err := h.issueTokens(r.Context(), user)
	if err != nil {
		slog.Error("failed to issue tokens", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID:       user.ID,
		Email:        user.Email,
		Token:        access,
		RefreshToken: refresh,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("failed to get user by email", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.AccountLocked || !user.Enabled {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Account is disabled or locked")
		return
	}

	// Rotation: a fresh login invalidates every previously issued token.
	if err := h.tokenStore.RevokeByUser(r.Context(), user.ID); err != nil {
		slog.Error("failed to revoke previous tokens", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	access, refresh, err := h.issueTokens(r.Context(), user)
	if err != nil {
		slog.Error("failed to issue tokens", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:       user.ID,
		Email:        user.Email,
		Token:        access,
		RefreshToken: refresh,
	})
}

// Refresh handles POST /api/auth/refresh. The presented token must be of
// REFRESH kind, carry a fresh credential binding, and still be live in the
// token store.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	record, err := h.tokenStore.FindByToken(r.Context(), req.RefreshToken)
	if err != nil || record.Revoked || record.Expired || record.Kind != domain.TokenKindRefresh {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), claims.Email)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if !h.jwtService.VerifyBinding(req.RefreshToken, user) {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	if err := h.tokenStore.RevokeByUser(r.Context(), user.ID); err != nil {
		slog.Error("failed to rotate tokens", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	access, refresh, err := h.issueTokens(r.Context(), user)
	if err != nil {
		slog.Error("failed to issue tokens", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:       user.ID,
		Email:        user.Email,
		Token:        access,
		RefreshToken: refresh,
	})
}

// Logout handles POST /api/auth/logout. Revokes every live token for the
// caller and evicts their cache entry so revocation is visible immediately.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.GetPrincipal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), principal.Email)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.tokenStore.RevokeByUser(r.Context(), user.ID); err != nil {
		slog.Error("failed to revoke tokens", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}
	h.userCache.Evict(user.Email)

	w.WriteHeader(http.StatusNoContent)
}

// OAuthEntry handles the OAuth provider entry points. Provider token
// exchange is handled by a separate service; this surface only reserves the
// routes.
func (h *AuthHandler) OAuthEntry(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotImplemented, "OAuth login is not available")
}
