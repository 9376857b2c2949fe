package gate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vaultctl/gate"
	"vaultctl/session"
	"vaultctl/users"
)

func authenticated(role users.Role) session.Session {
	return session.Session{
		User:        &users.User{ID: 42, Email: "john.doe@example.com", Role: role},
		AccessToken: "access-1",
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name         string
		session      session.Session
		requiredRole users.Role
		want         gate.Decision
	}{
		{
			name:         "unauthenticated denied to login",
			session:      session.Session{},
			requiredRole: "",
			want:         gate.DenyToLogin,
		},
		{
			name:         "unauthenticated denied to login even for admin views",
			session:      session.Session{},
			requiredRole: users.RoleAdmin,
			want:         gate.DenyToLogin,
		},
		{
			name:         "authenticated user allowed into plain protected view",
			session:      authenticated(users.RoleUser),
			requiredRole: "",
			want:         gate.Allow,
		},
		{
			name:         "user lacking admin role denied to default",
			session:      authenticated(users.RoleUser),
			requiredRole: users.RoleAdmin,
			want:         gate.DenyToDefault,
		},
		{
			name:         "admin allowed into admin view",
			session:      authenticated(users.RoleAdmin),
			requiredRole: users.RoleAdmin,
			want:         gate.Allow,
		},
		{
			name:         "admin satisfies user requirement",
			session:      authenticated(users.RoleAdmin),
			requiredRole: users.RoleUser,
			want:         gate.Allow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, gate.Authorize(tt.session, tt.requiredRole))
		})
	}
}

func TestGuardPendingWhileUnresolved(t *testing.T) {
	store, err := session.NewStore(session.NewInMemoryKeystore())
	require.NoError(t, err)

	resolved := false
	guard := gate.NewGuard(store, func() bool { return resolved })

	require.Equal(t, gate.Pending, guard.Check(""))

	resolved = true
	require.Equal(t, gate.DenyToLogin, guard.Check(""))
}

func TestGuardRecomputesOnEveryCheck(t *testing.T) {
	store, err := session.NewStore(session.NewInMemoryKeystore())
	require.NoError(t, err)
	guard := gate.NewGuard(store, nil)

	require.Equal(t, gate.DenyToLogin, guard.Check(users.RoleAdmin))

	require.NoError(t, store.SetCredentials(
		&users.User{ID: 42, Email: "john.doe@example.com", Role: users.RoleUser},
		"access-1",
		"refresh-1",
	))
	require.Equal(t, gate.DenyToDefault, guard.Check(users.RoleAdmin))

	// a role promotion takes effect on the next navigation
	require.NoError(t, store.SetUser(&users.User{ID: 42, Email: "john.doe@example.com", Role: users.RoleAdmin}))
	require.Equal(t, gate.Allow, guard.Check(users.RoleAdmin))

	require.NoError(t, store.Logout())
	require.Equal(t, gate.DenyToLogin, guard.Check(users.RoleAdmin))
}

func TestDecisionString(t *testing.T) {
	require.Equal(t, "pending", gate.Pending.String())
	require.Equal(t, "allow", gate.Allow.String())
	require.Equal(t, "deny_to_login", gate.DenyToLogin.String())
	require.Equal(t, "deny_to_default", gate.DenyToDefault.String())
}
