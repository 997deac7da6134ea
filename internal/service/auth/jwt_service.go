package auth

import (
	"context"
	"time"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
)

// JWTService defines operations for issuing and inspecting JWT tokens.
// It is the pipeline's token codec: the authenticator never touches signing
// keys or claim layouts directly.
type JWTService interface {
	// GenerateToken creates a signed access token bound to the user's
	// current credentials. Returns the token string or an error.
	GenerateToken(ctx context.Context, user *domain.User) (string, error)

	// GenerateRefreshToken creates a signed refresh token for the user.
	// Refresh tokens have a longer lifetime and are only accepted by the
	// refresh endpoint, never by the authenticator.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, error)

	// ExtractSubject parses and verifies the token and returns its subject
	// (the owner's email). Any parse or signature failure is an error; the
	// authenticator treats that as an anonymous pass-through, not a 401.
	ExtractSubject(tokenString string) (string, error)

	// ExtractKind parses and verifies the token and returns its kind claim.
	ExtractKind(tokenString string) (domain.TokenKind, error)

	// VerifyBinding reports whether the token was issued against the user's
	// current credentials. A password change alters the binding, so tokens
	// issued before the change fail this check.
	VerifyBinding(tokenString string, user *domain.User) bool

	// ValidateRefreshToken validates a refresh token string and returns its
	// claims, enforcing the REFRESH kind.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// AccessTokenLifetime returns the configured access token lifetime,
	// used when persisting issued tokens.
	AccessTokenLifetime() time.Duration

	// RefreshTokenLifetime returns the configured refresh token lifetime.
	RefreshTokenLifetime() time.Duration
}

// Claims represents the verified claims extracted from a token.
type Claims struct {
	// Email is the subject: the address of the user the token was issued for.
	Email string `json:"sub,omitempty"`

	// Kind indicates the purpose of the token (ACCESS or REFRESH).
	// Used to prevent token misuse across different contexts.
	Kind domain.TokenKind `json:"kind,omitempty"`

	// Binding ties the token to the credentials it was issued against.
	Binding string `json:"bnd,omitempty"`

	// Standard registered JWT claims
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
