// Package gate decides, per navigation, whether the current session permits
// entering a protected or role-restricted view. It only renders verdicts; it
// never throws and never performs I/O.
package gate

import (
	"vaultctl/session"
	"vaultctl/users"
)

// Decision is the verdict for one guarded entry point.
type Decision int

const (
	// Pending means the session is still loading and no verdict exists yet.
	Pending Decision = iota
	// Allow renders the requested view.
	Allow
	// DenyToLogin redirects an unauthenticated caller to the login entry
	// point. The originally requested path is not preserved.
	DenyToLogin
	// DenyToDefault redirects an authenticated but under-privileged caller
	// to the default landing view, never to login, since the user is valid.
	DenyToDefault
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case DenyToLogin:
		return "deny_to_login"
	case DenyToDefault:
		return "deny_to_default"
	default:
		return "unknown"
	}
}

// Authorize is the single decision function reused by every guarded entry
// point. requiredRole may be empty for views that only need authentication.
func Authorize(sess session.Session, requiredRole users.Role) Decision {
	if !sess.IsAuthenticated() {
		return DenyToLogin
	}
	if requiredRole != "" {
		if sess.User == nil || !sess.User.Role.Satisfies(requiredRole) {
			return DenyToDefault
		}
	}
	return Allow
}

// Guard evaluates navigations against the live credential store, adding the
// loading state that exists before the first status check resolves.
// Decisions are recomputed on every call, never cached, so a role change
// takes effect on the next navigation.
type Guard struct {
	store   *session.Store
	resolve func() bool
}

// NewGuard creates a guard over the store. resolve reports whether the
// initial session resolution has completed; nil means "always resolved".
func NewGuard(store *session.Store, resolve func() bool) *Guard {
	return &Guard{store: store, resolve: resolve}
}

// Check returns the verdict for a navigation requiring requiredRole.
// While the session is still resolving the verdict is Pending and no
// redirect decision is made.
func (g *Guard) Check(requiredRole users.Role) Decision {
	if g.resolve != nil && !g.resolve() {
		return Pending
	}
	return Authorize(g.store.Session(), requiredRole)
}
