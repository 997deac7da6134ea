package domain

import (
	"regexp"
	"time"
)

// emailPattern is a deliberately permissive shape check; deliverability is
// the registration flow's concern, not the domain model's.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User represents a registered member of the dating platform.
// It contains identity, credential, and account-state details consumed by
// the authorization pipeline.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, used transiently during registration/updates
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	Role           Role      `json:"role"`
	Enabled        bool      `json:"enabled"`
	AccountLocked  bool      `json:"account_locked"`
	Verified       bool      `json:"verified"`
	Deactivated    bool      `json:"deactivated"`
	ProfileComplete bool     `json:"profile_complete"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and password.
// New accounts start enabled, unlocked, unverified, and with the CLIENT role;
// the ID is assigned by the store on creation.
// Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing it before storage.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		Email:     email,
		Password:  password,
		Role:      RoleClient,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !emailPattern.MatchString(u.Email) {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrUnknownRole
	}

	// Only one of Password/HashedPassword needs to be present; a user loaded
	// from the store carries no plaintext.
	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		if len(u.Password) > MaxPasswordLength {
			return ErrPasswordTooLong
		}
		return nil
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Password length bounds. The upper bound matches bcrypt's input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// CanAuthenticate reports whether the account state permits ordinary
// authenticated API access.
func (u *User) CanAuthenticate() bool {
	return u.Enabled && !u.AccountLocked
}

// CanCompleteProfile reports whether the account state permits the
// profile-completion flow, which is open to users that are verified but may
// not yet count as fully enabled members.
func (u *User) CanCompleteProfile() bool {
	return u.Verified && !u.Deactivated && !u.AccountLocked
}
