// Package session is the single source of truth for the authenticated
// client's identity: the current user record, the short-lived access token,
// and the longer-lived refresh token. The store persists all three under
// fixed keys so a restart recovers the session without re-authenticating.
package session

import (
	"fmt"

	"vaultctl/users"
)

// Session is the client's view of identity and authorization.
// Token values are opaque strings; they are carried only in memory, the
// persisted keystore, and the Authorization header, never in logs.
type Session struct {
	User         *users.User
	AccessToken  string
	RefreshToken string
}

// IsAuthenticated reports whether the session holds an access token.
// The store guarantees that an authenticated session also carries a user.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// String renders the session with both tokens redacted.
func (s Session) String() string {
	state := "anonymous"
	if s.IsAuthenticated() {
		state = fmt.Sprintf("user=%s role=%s", s.User.Email, s.User.Role)
	}
	return fmt.Sprintf("Session{%s access_token=[redacted] refresh_token=[redacted]}", state)
}
