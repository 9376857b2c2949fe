package session

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"vaultctl/users"
)

// Store holds the current Session and mirrors every mutation into its
// keystore. Mutations are synchronous, pure state transitions: no network
// I/O ever happens here, and persistence is a deterministic function of the
// new state. A mutex preserves the atomicity that single-threaded runtimes
// get for free.
type Store struct {
	mu       sync.RWMutex
	keystore Keystore
	current  Session
}

// NewStore creates a store backed by the given keystore.
func NewStore(keystore Keystore) (*Store, error) {
	if keystore == nil {
		return nil, errors.New("[NewStore] keystore is required")
	}
	return &Store{keystore: keystore}, nil
}

// Load hydrates the session from the keystore. Missing keys leave the
// session empty; a corrupt user record is treated as logged out rather than
// failing startup.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, _, err := s.keystore.Get(KeyAccessToken)
	if err != nil {
		return errors.Wrap(err, "[Store.Load] access token")
	}
	refresh, _, err := s.keystore.Get(KeyRefreshToken)
	if err != nil {
		return errors.Wrap(err, "[Store.Load] refresh token")
	}

	var user *users.User
	if raw, ok, err := s.keystore.Get(KeyUser); err != nil {
		return errors.Wrap(err, "[Store.Load] user")
	} else if ok && raw != "" {
		user = &users.User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			user = nil
			access, refresh = "", ""
		}
	}

	// authenticated implies user != nil
	if user == nil {
		access = ""
	}

	s.current = Session{User: user, AccessToken: access, RefreshToken: refresh}
	return nil
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCredentials replaces the session wholesale after a successful login,
// register, or OAuth callback confirmation.
func (s *Store) SetCredentials(user *users.User, accessToken, refreshToken string) error {
	if user == nil {
		return errors.New("[Store.SetCredentials] user is required")
	}
	if accessToken == "" {
		return errors.New("[Store.SetCredentials] access token is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{User: user, AccessToken: accessToken, RefreshToken: refreshToken}
	return s.persist()
}

// SetAccessToken replaces only the access token after a successful refresh.
// The user record and refresh token are untouched.
func (s *Store) SetAccessToken(accessToken string) error {
	return s.SetTokens(accessToken, "")
}

// SetTokens replaces the access token and, when the refresh endpoint rotated
// it, the refresh token. An empty refreshToken keeps the stored one.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	if accessToken == "" {
		return errors.New("[Store.SetTokens] access token is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.AccessToken = accessToken
	if refreshToken != "" {
		s.current.RefreshToken = refreshToken
	}
	return s.persist()
}

// SetUser replaces only the user record, keeping tokens. Used by the
// status-check probe after an OAuth callback.
func (s *Store) SetUser(user *users.User) error {
	if user == nil {
		return errors.New("[Store.SetUser] user is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.User = user
	return s.persist()
}

// Logout nulls every field and removes the persisted keys. Calling it when
// already logged out is a no-op with no error.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{}
	for _, key := range []string{KeyUser, KeyAccessToken, KeyRefreshToken} {
		if err := s.keystore.Delete(key); err != nil {
			return errors.Wrapf(err, "[Store.Logout] delete %s", key)
		}
	}
	return nil
}

// persist mirrors the current session into the keystore. Caller holds the lock.
func (s *Store) persist() error {
	userJSON, err := json.Marshal(s.current.User)
	if err != nil {
		return errors.Wrap(err, "[Store.persist] marshal user")
	}
	if err := s.keystore.Set(KeyUser, string(userJSON)); err != nil {
		return errors.Wrap(err, "[Store.persist] user")
	}
	if err := s.keystore.Set(KeyAccessToken, s.current.AccessToken); err != nil {
		return errors.Wrap(err, "[Store.persist] access token")
	}
	if err := s.keystore.Set(KeyRefreshToken, s.current.RefreshToken); err != nil {
		return errors.Wrap(err, "[Store.persist] refresh token")
	}
	return nil
}
