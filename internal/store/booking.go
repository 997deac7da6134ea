package store

import (
	"context"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
)

// BookingStore defines the interface for booking data persistence.
type BookingStore interface {
	// Create saves a new booking and assigns its numeric ID.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by its numeric ID.
	// Returns ErrBookingNotFound if the booking does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)

	// Update modifies an existing booking.
	// Returns ErrBookingNotFound if the booking does not exist.
	Update(ctx context.Context, booking *domain.Booking) error

	// Delete removes a booking by its ID.
	// Returns ErrBookingNotFound if the booking does not exist.
	Delete(ctx context.Context, id int64) error
}
