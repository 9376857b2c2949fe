package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vaultctl/users"
)

func TestRoleIsValid(t *testing.T) {
	require.True(t, users.RoleUser.IsValid())
	require.True(t, users.RoleAdmin.IsValid())
	require.False(t, users.Role("superuser").IsValid())
	require.False(t, users.Role("").IsValid())
}

func TestRoleSatisfies(t *testing.T) {
	require.True(t, users.RoleAdmin.Satisfies(users.RoleUser))
	require.True(t, users.RoleAdmin.Satisfies(users.RoleAdmin))
	require.True(t, users.RoleUser.Satisfies(users.RoleUser))
	require.False(t, users.RoleUser.Satisfies(users.RoleAdmin))

	// an empty requirement only needs authentication
	require.True(t, users.RoleUser.Satisfies(""))
	require.True(t, users.Role("").Satisfies(""))
}

func TestUserIsAdmin(t *testing.T) {
	require.True(t, (&users.User{Role: users.RoleAdmin}).IsAdmin())
	require.False(t, (&users.User{Role: users.RoleUser}).IsAdmin())
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "John Doe", (&users.User{Name: "John Doe", Email: "john.doe@example.com"}).DisplayName())
	require.Equal(t, "john.doe@example.com", (&users.User{Email: "john.doe@example.com"}).DisplayName())
}
