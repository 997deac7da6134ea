package api

import "time"

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the payload for the token refresh endpoint.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is the success response for register/login/refresh.
type AuthResponse struct {
	UserID       int64  `json:"user_id"`
	Email        string `json:"email"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest is the payload for profile updates.
type UpdateProfileRequest struct {
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

// CompleteProfileRequest is the payload for the profile-completion flow.
type CompleteProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Birthdate   string `json:"birthdate"    validate:"required"`
}

// UserResponse is the public projection of a user record.
type UserResponse struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Verified        bool   `json:"verified"`
	ProfileComplete bool   `json:"profile_complete"`
}

// CreateBookingRequest is the payload for creating a booking.
type CreateBookingRequest struct {
	Venue    string    `json:"venue"     validate:"required"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
}

// UpdateBookingRequest is the payload for updating a booking.
type UpdateBookingRequest struct {
	Venue    string    `json:"venue"     validate:"required"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
}

// BookingResponse is the public projection of a booking.
type BookingResponse struct {
	ID         int64     `json:"id"`
	OwnerEmail string    `json:"owner_email"`
	Venue      string    `json:"venue"`
	StartsAt   time.Time `json:"starts_at"`
}
