package records_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"vaultctl/records"
	"vaultctl/session"
	"vaultctl/transport"
	"vaultctl/users"
)

type testFixture struct {
	client *records.Client
	mux    *http.ServeMux
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{mux: http.NewServeMux()}
	server := httptest.NewServer(f.mux)
	t.Cleanup(server.Close)

	store, err := session.NewStore(session.NewInMemoryKeystore())
	require.NoError(t, err)
	require.NoError(t, store.SetCredentials(
		&users.User{ID: 42, Email: "john.doe@example.com"},
		"access-1",
		"refresh-1",
	))

	dispatcher, err := transport.New(server.URL, store)
	require.NoError(t, err)

	client, err := records.New(dispatcher)
	require.NoError(t, err)
	f.client = client

	return f
}

func TestCreateRequestFlattensPayload(t *testing.T) {
	req := records.CreateRequest{
		Name:     "prod db",
		DataType: records.TypeCredentials,
		Payload: map[string]any{
			"username": "svc",
			"password": "hunter2",
		},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &body))
	require.Equal(t, "prod db", body["name"])
	require.Equal(t, "credentials", body["data_type"])
	require.Equal(t, "svc", body["username"])
	require.Equal(t, "hunter2", body["password"])
	require.NotContains(t, body, "description")
	require.NotContains(t, body, "rotation_interval_days")
	require.NotContains(t, body, "payload")
}

func TestCreateRequestPayloadWinsOnCollision(t *testing.T) {
	req := records.CreateRequest{
		Name:     "typed name",
		DataType: records.TypeText,
		Payload:  map[string]any{"name": "payload name"},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &body))
	require.Equal(t, "payload name", body["name"])
}

func TestUpdateRequestOmitsUnsetFields(t *testing.T) {
	active := false
	req := records.UpdateRequest{
		Description: "rotated",
		IsActive:    &active,
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &body))
	require.Equal(t, "rotated", body["description"])
	require.Equal(t, false, body["is_active"])
	require.NotContains(t, body, "name")
	require.NotContains(t, body, "project_id")
}

func TestListFiltersByType(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ssh_key", r.URL.Query().Get("data_type"))
		json.NewEncoder(w).Encode([]records.ListItem{{ID: "rec-1", Name: "bastion", DataType: records.TypeSSHKey}})
	})

	items, err := f.client.List(context.Background(), records.TypeSSHKey)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "bastion", items[0].Name)
}

func TestCreateSendsProjectQuery(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "proj-1", r.URL.Query().Get("project_id"))
		json.NewEncoder(w).Encode(records.Record{ID: "rec-1", ProjectID: "proj-1"})
	})

	record, err := f.client.Create(context.Background(), records.CreateRequest{
		Name:     "shared cert",
		DataType: records.TypeCertificate,
	}, "proj-1")
	require.NoError(t, err)
	require.Equal(t, "proj-1", record.ProjectID)
}

func TestRotate(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/data/rec-1/rotate", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(records.RotateResponse{Status: "success", Message: "rotation scheduled"})
	})

	resp, err := f.client.Rotate(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Equal(t, "rotation scheduled", resp.Message)
}
