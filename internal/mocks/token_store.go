package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// MockTokenStore implements store.TokenStore for testing.
type MockTokenStore struct {
	// Function fields for customizable behavior
	SaveFn        func(ctx context.Context, token *domain.PersistedToken) error
	FindByTokenFn func(ctx context.Context, token string) (*domain.PersistedToken, error)

	mu     sync.Mutex
	tokens map[string]*domain.PersistedToken
}

// Ensure MockTokenStore implements store.TokenStore
var _ store.TokenStore = (*MockTokenStore)(nil)

// NewMockTokenStore creates a new mock store with initialized defaults.
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{tokens: make(map[string]*domain.PersistedToken)}
}

// Seed inserts a token record directly.
func (m *MockTokenStore) Seed(token *domain.PersistedToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Token] = token
}

// Save implements the TokenStore interface.
func (m *MockTokenStore) Save(ctx context.Context, token *domain.PersistedToken) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, token)
	}
	m.Seed(token)
	return nil
}

// FindByToken implements the TokenStore interface.
func (m *MockTokenStore) FindByToken(
	ctx context.Context,
	token string,
) (*domain.PersistedToken, error) {
	if m.FindByTokenFn != nil {
		return m.FindByTokenFn(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[token]; ok {
		return t, nil
	}
	return nil, store.ErrTokenNotFound
}

// RevokeByUser implements the TokenStore interface.
func (m *MockTokenStore) RevokeByUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

// MarkExpired implements the TokenStore interface.
func (m *MockTokenStore) MarkExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tokens {
		if now.After(t.ExpiresAt) {
			t.Expired = true
		}
	}
	return nil
}
