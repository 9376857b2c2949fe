// Package secrets is the typed client for the per-user secret store.
// Values travel encrypted; this client never sees plaintext key material
// beyond what the caller supplies on create.
package secrets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"vaultctl/transport"
)

const basePath = "/api/secrets"

// Secret is the backend's view of one stored secret.
type Secret struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	KeyID          string     `json:"key_id,omitempty"`
	EncryptedValue string     `json:"encrypted_value,omitempty"`
	Version        int        `json:"version"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	IsActive       bool       `json:"is_active"`
	AccessCount    int        `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

// CreateRequest creates a new secret.
type CreateRequest struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// UpdateRequest patches an existing secret; nil/zero fields are left alone.
type UpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Client talks to the secrets endpoints through the dispatcher.
type Client struct {
	dispatcher *transport.Dispatcher
}

// New creates a secrets client.
func New(dispatcher *transport.Dispatcher) (*Client, error) {
	if dispatcher == nil {
		return nil, errors.New("[secrets.New] dispatcher is required")
	}
	return &Client{dispatcher: dispatcher}, nil
}

// List returns all secrets owned by the current user.
func (c *Client) List(ctx context.Context) ([]Secret, error) {
	var out []Secret
	if err := c.dispatcher.Do(ctx, http.MethodGet, basePath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one secret by ID.
func (c *Client) Get(ctx context.Context, id string) (*Secret, error) {
	var out Secret
	if err := c.dispatcher.Do(ctx, http.MethodGet, itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new secret.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Secret, error) {
	var out Secret
	if err := c.dispatcher.Do(ctx, http.MethodPost, basePath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches a secret.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*Secret, error) {
	var out Secret
	if err := c.dispatcher.Do(ctx, http.MethodPut, itemPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a secret.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.dispatcher.Do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id string) string {
	return fmt.Sprintf("%s/%s", basePath, url.PathEscape(id))
}
