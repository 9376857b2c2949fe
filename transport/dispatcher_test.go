package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "vaultctl/internal/errors"
	"vaultctl/session"
	"vaultctl/transport"
	"vaultctl/users"
)

const (
	testAccessToken    = "access-original"
	testRefreshToken   = "refresh-original"
	testFreshAccess    = "access-fresh"
	testRotatedRefresh = "refresh-rotated"
)

// testFixture wires a dispatcher against a fake backend.
type testFixture struct {
	store      *session.Store
	dispatcher *transport.Dispatcher
	server     *httptest.Server

	refreshCalls atomic.Int64
}

// setupTestFixture starts a backend that serves handler for every path
// except /auth/refresh, which mints a fresh token pair.
func setupTestFixture(t *testing.T, handler http.HandlerFunc, refreshStatus int) *testFixture {
	t.Helper()

	f := &testFixture{}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		require.Empty(t, r.Header.Get("Authorization"), "refresh must not carry a bearer token")

		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, testRefreshToken, req.RefreshToken)

		if refreshStatus != http.StatusOK {
			w.WriteHeader(refreshStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  testFreshAccess,
			"refresh_token": testRotatedRefresh,
		})
	})
	mux.HandleFunc("/", handler)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	store, err := session.NewStore(session.NewInMemoryKeystore())
	require.NoError(t, err)
	require.NoError(t, store.SetCredentials(
		&users.User{ID: 1, Email: "john.doe@example.com", Role: users.RoleUser},
		testAccessToken,
		testRefreshToken,
	))
	f.store = store

	dispatcher, err := transport.New(f.server.URL, store)
	require.NoError(t, err)
	f.dispatcher = dispatcher

	return f
}

func TestDoAttachesBearerAndDecodes(t *testing.T) {
	var gotAuth string
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}, http.StatusOK)

	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, f.dispatcher.Do(context.Background(), http.MethodGet, "/api/thing", nil, &out))
	require.Equal(t, "Bearer "+testAccessToken, gotAuth)
	require.Equal(t, "ok", out.Message)
	require.EqualValues(t, 0, f.refreshCalls.Load())
}

func TestDoNon401ErrorPassesThrough(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "message": "no such secret"})
	}, http.StatusOK)

	err := f.dispatcher.Do(context.Background(), http.MethodGet, "/api/thing", nil, nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	require.EqualValues(t, 0, f.refreshCalls.Load())

	// a plain business error never disturbs the session
	sess := f.store.Session()
	require.Equal(t, testAccessToken, sess.AccessToken)
	require.Equal(t, testRefreshToken, sess.RefreshToken)
}

func Test401TriggersSingleRefreshAndRetry(t *testing.T) {
	var calls atomic.Int64
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.Equal(t, "Bearer "+testFreshAccess, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}, http.StatusOK)

	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, f.dispatcher.Do(context.Background(), http.MethodGet, "/api/thing", nil, &out))
	require.Equal(t, "ok", out.Message)
	require.EqualValues(t, 1, f.refreshCalls.Load())
	require.EqualValues(t, 2, calls.Load())

	// refresh rotation is stored, user record is untouched
	sess := f.store.Session()
	require.Equal(t, testFreshAccess, sess.AccessToken)
	require.Equal(t, testRotatedRefresh, sess.RefreshToken)
	require.NotNil(t, sess.User)
	require.Equal(t, "john.doe@example.com", sess.User.Email)
}

func TestSecond401ReturnedWithoutSecondRefresh(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, http.StatusOK)

	err := f.dispatcher.Do(context.Background(), http.MethodGet, "/api/thing", nil, nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeAuthFailed))
	require.False(t, apperrors.NeedsReauthentication(err))
	require.EqualValues(t, 1, f.refreshCalls.Load())
}

func Test401WithoutRefreshTokenClearsSession(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, http.StatusOK)
	require.NoError(t, f.store.SetCredentials(
		&users.User{ID: 1, Email: "john.doe@example.com"},
		testAccessToken,
		"",
	))

	err := f.dispatcher.Do(context.Background(), http.MethodGet, "/api/thing", nil, nil)
	require.True(t, apperrors.NeedsReauthentication(err))
	require.EqualValues(t, 0, f.refreshCalls.Load())
	require.False(t, f.store.Session().IsAuthenticated())
}

func TestFailedRefreshClearsSession(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, http.StatusUnauthorized)

	err := f.dispatcher.Do(context.Background(), http.MethodGet, "/api/thing", nil, nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeReauthenticationRequired))
	require.True(t, apperrors.NeedsReauthentication(err))
	require.False(t, f.store.Session().IsAuthenticated())
	require.Empty(t, f.store.Session().RefreshToken)
}

func TestNetworkErrorLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {}, http.StatusOK)
	f.server.Close()

	err := f.dispatcher.Do(context.Background(), http.MethodGet, "/api/thing", nil, nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNetworkError))

	sess := f.store.Session()
	require.Equal(t, testAccessToken, sess.AccessToken)
	require.Equal(t, testRefreshToken, sess.RefreshToken)
	require.True(t, sess.IsAuthenticated())
}

func TestErrorBodyWithoutCodeFallsBackToStatus(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, http.StatusOK)

	err := f.dispatcher.Do(context.Background(), http.MethodGet, "/api/thing", nil, nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeServerError))
}
