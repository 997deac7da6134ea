package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// BookingStore implements the store.BookingStore interface using PostgreSQL.
type BookingStore struct {
	db *sql.DB
}

// NewBookingStore creates a new PostgreSQL implementation of the
// BookingStore interface.
func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db}
}

// Ensure BookingStore implements store.BookingStore interface
var _ store.BookingStore = (*BookingStore)(nil)

// Create implements store.BookingStore.Create.
func (s *BookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	return s.db.QueryRowContext(ctx,
		`INSERT INTO bookings (owner_email, venue, starts_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		booking.OwnerEmail, booking.Venue, booking.StartsAt,
		booking.CreatedAt, booking.UpdatedAt,
	).Scan(&booking.ID)
}

// GetByID implements store.BookingStore.GetByID.
func (s *BookingStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_email, venue, starts_at, created_at, updated_at
		 FROM bookings WHERE id = $1`, id,
	).Scan(&b.ID, &b.OwnerEmail, &b.Venue, &b.StartsAt, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Update implements store.BookingStore.Update.
func (s *BookingStore) Update(ctx context.Context, booking *domain.Booking) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET venue = $1, starts_at = $2, updated_at = $3 WHERE id = $4`,
		booking.Venue, booking.StartsAt, booking.UpdatedAt, booking.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrBookingNotFound
	}
	return nil
}

// Delete implements store.BookingStore.Delete.
func (s *BookingStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrBookingNotFound
	}
	return nil
}
