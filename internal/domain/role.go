package domain

// Role is the closed set of account roles. There is intentionally no
// "unknown" member: strings coming off the wire or out of the database go
// through ParseRole, which rejects anything outside the set.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAdmin:
		return true
	}
	return false
}

// Authority returns the authority string granted by this role, in the
// ROLE_-prefixed convention the ownership guard matches against.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// AdminAuthority is the authority that unlocks administrator overrides in
// the ownership guard and admin route rules.
const AdminAuthority = "ROLE_ADMIN"

// ParseRole converts a stored or transmitted role string into a Role.
// Returns ErrUnknownRole for anything outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}
