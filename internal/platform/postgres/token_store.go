package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// TokenStore implements the store.TokenStore interface using PostgreSQL.
type TokenStore struct {
	db *sql.DB
}

// NewTokenStore creates a new PostgreSQL implementation of the TokenStore
// interface.
func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Ensure TokenStore implements store.TokenStore interface
var _ store.TokenStore = (*TokenStore)(nil)

// Save implements store.TokenStore.Save.
func (s *TokenStore) Save(ctx context.Context, token *domain.PersistedToken) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (token, user_id, email, kind, revoked, expired,
			expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		token.Token, token.UserID, token.Email, string(token.Kind),
		token.Revoked, token.Expired, token.ExpiresAt, token.CreatedAt,
	)
	return err
}

// FindByToken implements store.TokenStore.FindByToken.
func (s *TokenStore) FindByToken(ctx context.Context, token string) (*domain.PersistedToken, error) {
	var t domain.PersistedToken
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, email, kind, revoked, expired, expires_at, created_at
		 FROM tokens WHERE token = $1`, token,
	).Scan(&t.Token, &t.UserID, &t.Email, &kind, &t.Revoked, &t.Expired,
		&t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	parsed, err := domain.ParseTokenKind(kind)
	if err != nil {
		return nil, err
	}
	t.Kind = parsed
	return &t, nil
}

// RevokeByUser implements store.TokenStore.RevokeByUser.
func (s *TokenStore) RevokeByUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tokens SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`, userID)
	return err
}

// MarkExpired implements store.TokenStore.MarkExpired.
func (s *TokenStore) MarkExpired(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tokens SET expired = TRUE WHERE expires_at <= NOW() AND NOT expired`)
	return err
}
