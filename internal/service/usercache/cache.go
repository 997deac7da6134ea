// Package usercache provides memoized, invalidatable lookups of user
// identity and validity predicates. The authenticator consults it on every
// request, so reads must be cheap; correctness depends on every mutation
// path that touches auth-relevant fields calling Evict.
package usercache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// SecurityInfo is a lightweight projection of the user record, holding just
// what the pipeline needs to build a security context.
type SecurityInfo struct {
	Email   string
	Role    domain.Role
	Enabled bool
	Locked  bool
}

// Cache memoizes user records and validity predicates keyed by email.
// The record cache and each predicate cache are independent, so evicting
// one predicate never serves a stale value for the other. Entries expire
// after the configured TTL; explicit eviction bounds staleness tighter for
// mutation paths that honor the contract.
type Cache struct {
	userStore store.UserStore

	records      *expirable.LRU[string, *domain.User]
	authValid    *expirable.LRU[string, bool]
	profileValid *expirable.LRU[string, bool]
}

// New creates a Cache over the given user store with the given TTL and
// maximum entry count per internal cache.
func New(userStore store.UserStore, ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		userStore:    userStore,
		records:      expirable.NewLRU[string, *domain.User](maxEntries, nil, ttl),
		authValid:    expirable.NewLRU[string, bool](maxEntries, nil, ttl),
		profileValid: expirable.NewLRU[string, bool](maxEntries, nil, ttl),
	}
}

// FindByEmail returns the cached user record for the email, loading it from
// the store on a miss. Returns store.ErrUserNotFound if no such user exists;
// negative results are not cached.
func (c *Cache) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := c.records.Get(email); ok {
		return user, nil
	}

	user, err := c.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	c.records.Add(email, user)
	return user, nil
}

// IsValidForAuth reports whether the account may use ordinary authenticated
// routes: enabled and not locked.
func (c *Cache) IsValidForAuth(ctx context.Context, email string) (bool, error) {
	if valid, ok := c.authValid.Get(email); ok {
		return valid, nil
	}

	user, err := c.FindByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve user validity: %w", err)
	}

	valid := user.CanAuthenticate()
	c.authValid.Add(email, valid)
	return valid, nil
}

// IsValidForProfileCompletion reports whether the account may use the
// profile-completion route: verified, not deactivated, and not locked.
func (c *Cache) IsValidForProfileCompletion(ctx context.Context, email string) (bool, error) {
	if valid, ok := c.profileValid.Get(email); ok {
		return valid, nil
	}

	user, err := c.FindByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve user validity: %w", err)
	}

	valid := user.CanCompleteProfile()
	c.profileValid.Add(email, valid)
	return valid, nil
}

// SecurityInfo returns the projection used to construct a security context.
func (c *Cache) SecurityInfo(ctx context.Context, email string) (*SecurityInfo, error) {
	user, err := c.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &SecurityInfo{
		Email:   user.Email,
		Role:    user.Role,
		Enabled: user.Enabled,
		Locked:  user.AccountLocked,
	}, nil
}

// Evict drops every cached value for the email. Every mutation touching
// role, lock state, deactivation, or password must call this; otherwise
// staleness is bounded only by the TTL.
func (c *Cache) Evict(email string) {
	c.records.Remove(email)
	c.authValid.Remove(email)
	c.profileValid.Remove(email)
}

// EvictAll drops every cached value.
func (c *Cache) EvictAll() {
	c.records.Purge()
	c.authValid.Purge()
	c.profileValid.Purge()
}
