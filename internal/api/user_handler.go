package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/AllexanderGM/feeling-sub000/internal/api/shared"
	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/service/auth"
	"github.com/AllexanderGM/feeling-sub000/internal/service/usercache"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// UserHandler handles user profile API requests. Ownership of the target
// resource is enforced upstream by the pipeline; handlers here only apply
// business validation and persistence.
type UserHandler struct {
	userStore      store.UserStore
	tokenStore     store.TokenStore
	passwordHasher auth.PasswordHasher
	userCache      *usercache.Cache
	validator      *validator.Validate
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(
	userStore store.UserStore,
	tokenStore store.TokenStore,
	passwordHasher auth.PasswordHasher,
	userCache *usercache.Cache,
) *UserHandler {
	return &UserHandler{
		userStore:      userStore,
		tokenStore:     tokenStore,
		passwordHasher: passwordHasher,
		userCache:      userCache,
		validator:      validator.New(),
	}
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Role:            string(u.Role),
		Verified:        u.Verified,
		ProfileComplete: u.ProfileComplete,
	}
}

// GetProfile handles GET /api/users/me.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.GetPrincipal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), principal.Email)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "User not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userResponse(user))
}

// UpdateUser handles PUT/PATCH /api/users/{email}. The ownership guard has
// already established that the caller owns this email or is an admin.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to load user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update user")
		return
	}

	passwordChanged := false
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		hashed, err := h.passwordHasher.Hash(req.Password)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update user")
			return
		}
		user.HashedPassword = hashed
		passwordChanged = true
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.userStore.Update(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		slog.Error("failed to update user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update user")
		return
	}

	// Credential rotation invalidates outstanding tokens via the binding
	// check; revoking the persisted rows keeps the store consistent.
	if passwordChanged {
		if err := h.tokenStore.RevokeByUser(r.Context(), user.ID); err != nil {
			slog.Error("failed to revoke tokens after password change",
				"error", err, "user_id", user.ID)
		}
	}
	h.userCache.Evict(email)
	if req.Email != "" && req.Email != email {
		h.userCache.Evict(req.Email)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userResponse(user))
}

// DeleteUser handles DELETE /api/users/{email}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.userStore.GetByEmail(r.Context(), email)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "User not found")
		return
	}

	if err := h.userStore.Delete(r.Context(), user.ID); err != nil {
		slog.Error("failed to delete user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	h.userCache.Evict(email)

	w.WriteHeader(http.StatusNoContent)
}

// CompleteProfile handles POST /api/users/complete-profile. The
// authenticator admits verified-but-not-yet-enabled accounts to this route
// via the profile-completion predicate.
func (h *UserHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.GetPrincipal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CompleteProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), principal.Email)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "User not found")
		return
	}

	user.ProfileComplete = true
	user.UpdatedAt = time.Now().UTC()
	if err := h.userStore.Update(r.Context(), user); err != nil {
		slog.Error("failed to complete profile", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to complete profile")
		return
	}
	h.userCache.Evict(user.Email)

	shared.RespondWithJSON(w, r, http.StatusOK, userResponse(user))
}

// SetLocked handles POST /api/admin/users/{email}/lock and .../unlock.
// Admin access is enforced upstream by route classification.
func (h *UserHandler) SetLocked(locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")

		user, err := h.userStore.GetByEmail(r.Context(), email)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusNotFound, "User not found")
			return
		}

		user.AccountLocked = locked
		user.UpdatedAt = time.Now().UTC()
		if err := h.userStore.Update(r.Context(), user); err != nil {
			slog.Error("failed to update lock state", "error", err, "user_id", user.ID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update user")
			return
		}
		h.userCache.Evict(email)

		shared.RespondWithJSON(w, r, http.StatusOK, userResponse(user))
	}
}
