package store

import (
	"context"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
)

// TokenStore defines the interface for persisted token records. The
// authenticator only reads from it; login, refresh, and logout flows write.
type TokenStore interface {
	// Save persists a newly issued token record.
	Save(ctx context.Context, token *domain.PersistedToken) error

	// FindByToken retrieves the record for the exact token string.
	// Returns ErrTokenNotFound if no record exists.
	FindByToken(ctx context.Context, token string) (*domain.PersistedToken, error)

	// RevokeByUser marks every live token belonging to the user as revoked.
	// Used at logout and on credential rotation.
	RevokeByUser(ctx context.Context, userID int64) error

	// MarkExpired flags tokens whose expiry has passed. Run opportunistically;
	// the authenticator also checks the expiry timestamp directly.
	MarkExpired(ctx context.Context) error
}
