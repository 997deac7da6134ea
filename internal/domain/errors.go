package domain

import "errors"

// Common validation errors
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrUnknownRole      = errors.New("unknown role")
	ErrUnknownTokenKind = errors.New("unknown token kind")
	ErrEmptyVenue       = errors.New("booking venue cannot be empty")
	ErrMissingStartTime = errors.New("booking start time cannot be empty")
)
