package users

// Role represents the authorization level of a user.
type Role string

const (
	// RoleUser indicates a regular user.
	RoleUser Role = "user"
	// RoleAdmin indicates an administrator.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Satisfies reports whether a holder of r meets the given requirement.
// Admin satisfies every role; an empty requirement is satisfied by anyone.
func (r Role) Satisfies(required Role) bool {
	if required == "" {
		return true
	}
	if r == RoleAdmin {
		return true
	}
	return r == required
}
