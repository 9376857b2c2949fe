// Package users holds the user record and role model shared by the session
// store, the gate, and the admin client.
package users

import "time"

// User is the backend's public view of an account, as returned by login,
// register, and /auth/me.
type User struct {
	ID        int64  `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Provider  string `json:"provider,omitempty"` // "local", "google", ...
	Role      Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the name, falling back to the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ManagedUser is the extended record exposed to administrators.
type ManagedUser struct {
	ID            int64     `json:"user_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Role          Role      `json:"role"`
	AuthMethod    string    `json:"auth_method,omitempty"`
	Provider      string    `json:"provider,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
