package domain

import "time"

// TokenKind distinguishes the purposes a persisted token can serve.
// REFRESH tokens must never authenticate API calls directly.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "ACCESS"
	TokenKindRefresh TokenKind = "REFRESH"
)

// Valid reports whether k is a member of the closed kind set.
func (k TokenKind) Valid() bool {
	switch k {
	case TokenKindAccess, TokenKindRefresh:
		return true
	}
	return false
}

// ParseTokenKind converts a claim or column value into a TokenKind.
// Returns ErrUnknownTokenKind for anything outside the closed set.
func ParseTokenKind(s string) (TokenKind, error) {
	k := TokenKind(s)
	if !k.Valid() {
		return "", ErrUnknownTokenKind
	}
	return k, nil
}

// PersistedToken is the server-side record of an issued token. Tokens are
// written at login/refresh and flipped to revoked at logout/rotation, so a
// stolen-but-signed token can be cut off before its claimed expiry.
type PersistedToken struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Kind      TokenKind `json:"kind"`
	Revoked   bool      `json:"revoked"`
	Expired   bool      `json:"expired"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticates reports whether this persisted record alone permits the
// token to authenticate an API call. Signature and claim checks are the
// token codec's job; this covers the stored state.
func (t *PersistedToken) Authenticates(now time.Time) bool {
	if t.Kind != TokenKindAccess {
		return false
	}
	if t.Revoked || t.Expired {
		return false
	}
	return now.Before(t.ExpiresAt)
}
