package api

import (
	"context"
	"strings"

	"github.com/AllexanderGM/feeling-sub000/internal/api/middleware"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// OwnerResolver resolves numeric target identifiers to owner emails for the
// ownership guard. The path decides which store the identifier keys into.
type OwnerResolver struct {
	userStore    store.UserStore
	bookingStore store.BookingStore
}

// NewOwnerResolver creates an OwnerResolver over the given stores.
func NewOwnerResolver(userStore store.UserStore, bookingStore store.BookingStore) *OwnerResolver {
	return &OwnerResolver{
		userStore:    userStore,
		bookingStore: bookingStore,
	}
}

// Ensure OwnerResolver implements the middleware collaborator interface
var _ middleware.OwnerResolver = (*OwnerResolver)(nil)

// ResolveOwnerEmail implements middleware.OwnerResolver. Resource types
// without a resolvable owner return an error, which the guard treats as a
// denial.
func (r *OwnerResolver) ResolveOwnerEmail(ctx context.Context, path string, id int64) (string, error) {
	switch {
	case strings.HasPrefix(path, "/api/bookings/"):
		booking, err := r.bookingStore.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return booking.OwnerEmail, nil
	case strings.HasPrefix(path, "/api/users/"):
		user, err := r.userStore.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return user.Email, nil
	default:
		return "", store.ErrNotFound
	}
}
