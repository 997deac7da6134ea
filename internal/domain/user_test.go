package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("user@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, RoleClient, user.Role)
	assert.True(t, user.Enabled)
	assert.False(t, user.AccountLocked)
	assert.False(t, user.Verified)
	assert.False(t, user.ProfileComplete)
	assert.Zero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUser_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr error
	}{
		{
			name:    "valid user",
			mutate:  func(u *User) {},
			wantErr: nil,
		},
		{
			name:    "empty email",
			mutate:  func(u *User) { u.Email = "" },
			wantErr: ErrEmptyEmail,
		},
		{
			name:    "malformed email",
			mutate:  func(u *User) { u.Email = "not-an-email" },
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "email without tld",
			mutate:  func(u *User) { u.Email = "user@host" },
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "unknown role",
			mutate:  func(u *User) { u.Role = Role("SUPERUSER") },
			wantErr: ErrUnknownRole,
		},
		{
			name:    "password too short",
			mutate:  func(u *User) { u.Password = "short" },
			wantErr: ErrPasswordTooShort,
		},
		{
			name:    "password too long",
			mutate:  func(u *User) { u.Password = strings.Repeat("x", 73) },
			wantErr: ErrPasswordTooLong,
		},
		{
			name:    "password at upper bound",
			mutate:  func(u *User) { u.Password = strings.Repeat("x", 72) },
			wantErr: nil,
		},
		{
			name: "stored user with hash only",
			mutate: func(u *User) {
				u.Password = ""
				u.HashedPassword = "$2a$10$hash"
			},
			wantErr: nil,
		},
		{
			name: "no password at all",
			mutate: func(u *User) {
				u.Password = ""
				u.HashedPassword = ""
			},
			wantErr: ErrEmptyPassword,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user := &User{
				Email:    "user@example.com",
				Password: "password123",
				Role:     RoleClient,
			}
			tt.mutate(user)

			err := user.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUser_CanAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"enabled and unlocked", User{Enabled: true}, true},
		{"disabled", User{Enabled: false}, false},
		{"locked", User{Enabled: true, AccountLocked: true}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.user.CanAuthenticate())
		})
	}
}

func TestUser_CanCompleteProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"verified", User{Verified: true}, true},
		{"verified but not enabled", User{Verified: true, Enabled: false}, true},
		{"unverified", User{}, false},
		{"deactivated", User{Verified: true, Deactivated: true}, false},
		{"locked", User{Verified: true, AccountLocked: true}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.user.CanCompleteProfile())
		})
	}
}

func TestPersistedToken_Authenticates(t *testing.T) {
	t.Parallel()

	now := time.Now()
	base := PersistedToken{
		Kind:      TokenKindAccess,
		ExpiresAt: now.Add(time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(p *PersistedToken)
		want   bool
	}{
		{"live access token", func(p *PersistedToken) {}, true},
		{"refresh kind", func(p *PersistedToken) { p.Kind = TokenKindRefresh }, false},
		{"revoked", func(p *PersistedToken) { p.Revoked = true }, false},
		{"marked expired", func(p *PersistedToken) { p.Expired = true }, false},
		{"past expiry", func(p *PersistedToken) { p.ExpiresAt = now.Add(-time.Second) }, false},
		{"expires exactly now", func(p *PersistedToken) { p.ExpiresAt = now }, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token := base
			tt.mutate(&token)
			assert.Equal(t, tt.want, token.Authenticates(now))
		})
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	role, err := ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
	assert.Equal(t, "ROLE_ADMIN", role.Authority())

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestParseTokenKind(t *testing.T) {
	t.Parallel()

	kind, err := ParseTokenKind("REFRESH")
	require.NoError(t, err)
	assert.Equal(t, TokenKindRefresh, kind)

	_, err = ParseTokenKind("refresh")
	assert.ErrorIs(t, err, ErrUnknownTokenKind)
}
