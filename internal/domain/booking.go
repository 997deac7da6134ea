package domain

import "time"

// Booking is a date reservation created by a member. The pipeline only
// cares about its numeric ID and owner; venue coordination, payment, and
// scheduling rules live in the booking service proper.
type Booking struct {
	ID         int64     `json:"id"`
	OwnerEmail string    `json:"owner_email"`
	Venue      string    `json:"venue"`
	StartsAt   time.Time `json:"starts_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks if the Booking has valid data.
func (b *Booking) Validate() error {
	if b.OwnerEmail == "" {
		return ErrEmptyEmail
	}
	if b.Venue == "" {
		return ErrEmptyVenue
	}
	if b.StartsAt.IsZero() {
		return ErrMissingStartTime
	}
	return nil
}
