package session_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultctl/session"
	"vaultctl/users"
)

func testUser() *users.User {
	return &users.User{
		ID:    42,
		Email: "john.doe@example.com",
		Name:  "John Doe",
		Role:  users.RoleUser,
	}
}

func setupStore(t *testing.T) (*session.Store, *session.InMemoryKeystore) {
	t.Helper()

	keystore := session.NewInMemoryKeystore()
	store, err := session.NewStore(keystore)
	require.NoError(t, err)
	return store, keystore
}

func TestLoadEmptyKeystore(t *testing.T) {
	store, _ := setupStore(t)
	require.NoError(t, store.Load())

	sess := store.Session()
	require.False(t, sess.IsAuthenticated())
	require.Nil(t, sess.User)
}

func TestSetCredentialsRoundTrip(t *testing.T) {
	store, keystore := setupStore(t)
	require.NoError(t, store.SetCredentials(testUser(), "access-1", "refresh-1"))

	// a fresh store over the same keystore sees the same session
	reloaded, err := session.NewStore(keystore)
	require.NoError(t, err)
	require.NoError(t, reloaded.Load())

	sess := reloaded.Session()
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, "access-1", sess.AccessToken)
	require.Equal(t, "refresh-1", sess.RefreshToken)
	require.NotNil(t, sess.User)
	require.Equal(t, "john.doe@example.com", sess.User.Email)
	require.Equal(t, users.RoleUser, sess.User.Role)
}

func TestLoadCorruptUserTreatedAsLoggedOut(t *testing.T) {
	store, keystore := setupStore(t)
	require.NoError(t, keystore.Set(session.KeyUser, "{not json"))
	require.NoError(t, keystore.Set(session.KeyAccessToken, "access-1"))
	require.NoError(t, keystore.Set(session.KeyRefreshToken, "refresh-1"))

	require.NoError(t, store.Load())
	sess := store.Session()
	require.False(t, sess.IsAuthenticated())
	require.Nil(t, sess.User)
}

func TestLoadTokenWithoutUserIsNotAuthenticated(t *testing.T) {
	store, keystore := setupStore(t)
	require.NoError(t, keystore.Set(session.KeyAccessToken, "orphan-access"))

	require.NoError(t, store.Load())
	require.False(t, store.Session().IsAuthenticated())
}

func TestSetAccessTokenPreservesUserAndRefresh(t *testing.T) {
	store, _ := setupStore(t)
	require.NoError(t, store.SetCredentials(testUser(), "access-1", "refresh-1"))

	require.NoError(t, store.SetAccessToken("access-2"))

	sess := store.Session()
	require.Equal(t, "access-2", sess.AccessToken)
	require.Equal(t, "refresh-1", sess.RefreshToken)
	require.NotNil(t, sess.User)
	require.Equal(t, int64(42), sess.User.ID)
}

func TestSetTokensRotatesRefresh(t *testing.T) {
	store, _ := setupStore(t)
	require.NoError(t, store.SetCredentials(testUser(), "access-1", "refresh-1"))

	require.NoError(t, store.SetTokens("access-2", "refresh-2"))
	sess := store.Session()
	require.Equal(t, "access-2", sess.AccessToken)
	require.Equal(t, "refresh-2", sess.RefreshToken)
}

func TestSetCredentialsValidation(t *testing.T) {
	store, _ := setupStore(t)
	require.Error(t, store.SetCredentials(nil, "access-1", "refresh-1"))
	require.Error(t, store.SetCredentials(testUser(), "", "refresh-1"))
}

func TestLogoutClearsStateAndKeystore(t *testing.T) {
	store, keystore := setupStore(t)
	require.NoError(t, store.SetCredentials(testUser(), "access-1", "refresh-1"))

	require.NoError(t, store.Logout())
	require.False(t, store.Session().IsAuthenticated())

	for _, key := range []string{session.KeyUser, session.KeyAccessToken, session.KeyRefreshToken} {
		_, ok, err := keystore.Get(key)
		require.NoError(t, err)
		require.False(t, ok, "key %s should be removed", key)
	}

	// logging out twice is a no-op
	require.NoError(t, store.Logout())
}

func TestStringRedactsTokens(t *testing.T) {
	sess := session.Session{User: testUser(), AccessToken: "super-secret", RefreshToken: "also-secret"}
	require.NotContains(t, sess.String(), "super-secret")
	require.NotContains(t, sess.String(), "also-secret")
}

func TestFileKeystoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	keystore, err := session.NewFileKeystore(path)
	require.NoError(t, err)

	store, err := session.NewStore(keystore)
	require.NoError(t, err)
	require.NoError(t, store.SetCredentials(testUser(), "access-1", "refresh-1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	values := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &values))
	require.Equal(t, "access-1", values[session.KeyAccessToken])

	reopened, err := session.NewFileKeystore(path)
	require.NoError(t, err)
	reloaded, err := session.NewStore(reopened)
	require.NoError(t, err)
	require.NoError(t, reloaded.Load())
	require.True(t, reloaded.Session().IsAuthenticated())
}
