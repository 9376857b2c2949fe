// Package records is the typed client for the generic encrypted data
// records (/api/data): text blobs, credentials, API keys, SSH keys,
// kubernetes secrets, and certificates. Decrypted payloads stay opaque maps;
// their semantics are backend-owned.
package records

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"vaultctl/transport"
)

const basePath = "/api/data"

// Type classifies a data record.
type Type string

const (
	TypeText        Type = "text"
	TypeKubernetes  Type = "kubernetes"
	TypeCredentials Type = "credentials"
	TypeAPIKey      Type = "api_key"
	TypeSSHKey      Type = "ssh_key"
	TypeCertificate Type = "certificate"
)

// Metadata is the non-sensitive summary stored alongside a record.
type Metadata struct {
	Namespace    string `json:"namespace,omitempty"`
	Username     string `json:"username,omitempty"`
	Host         string `json:"host,omitempty"`
	URL          string `json:"url,omitempty"`
	HasPublicKey bool   `json:"hasPublicKey,omitempty"`
	HasChain     bool   `json:"hasChain,omitempty"`
}

// Record is a full record including the decrypted payload.
type Record struct {
	ID                   string         `json:"id"`
	UserID               int64          `json:"user_id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	DataType             Type           `json:"data_type"`
	Version              int            `json:"version"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	IsActive             bool           `json:"is_active"`
	DecryptedData        map[string]any `json:"decrypted_data,omitempty"`
	Metadata             *Metadata      `json:"metadata,omitempty"`
	ProjectID            string         `json:"project_id,omitempty"`
	DecryptError         string         `json:"decrypt_error,omitempty"`
	RotationIntervalDays int            `json:"rotation_interval_days,omitempty"`
	NextRotationDate     *time.Time     `json:"next_rotation_date,omitempty"`
}

// ListItem is a record without its decrypted payload.
type ListItem struct {
	ID                   string     `json:"id"`
	UserID               int64      `json:"user_id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	DataType             Type       `json:"data_type"`
	Version              int        `json:"version"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	IsActive             bool       `json:"is_active"`
	Metadata             *Metadata  `json:"metadata,omitempty"`
	RotationIntervalDays int        `json:"rotation_interval_days,omitempty"`
	NextRotationDate     *time.Time `json:"next_rotation_date,omitempty"`
}

// CreateRequest creates a record. Payload carries the type-specific fields
// (fields, username/password, privateKey, certificate, ...) flattened into
// the request body; the client does not interpret them.
type CreateRequest struct {
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	DataType             Type           `json:"data_type"`
	RotationIntervalDays int            `json:"rotation_interval_days,omitempty"`
	Payload              map[string]any `json:"-"`
}

// MarshalJSON flattens Payload into the top-level object, mirroring the
// wire format.
func (r CreateRequest) MarshalJSON() ([]byte, error) {
	return marshalFlattened(map[string]any{
		"name":                   r.Name,
		"description":            r.Description,
		"data_type":              r.DataType,
		"rotation_interval_days": r.RotationIntervalDays,
	}, r.Payload)
}

// UpdateRequest patches a record; Payload works as in CreateRequest.
type UpdateRequest struct {
	Name                 string         `json:"name,omitempty"`
	Description          string         `json:"description,omitempty"`
	IsActive             *bool          `json:"is_active,omitempty"`
	RotationIntervalDays int            `json:"rotation_interval_days,omitempty"`
	ProjectID            string         `json:"project_id,omitempty"`
	Payload              map[string]any `json:"-"`
}

// MarshalJSON flattens Payload into the top-level object.
func (r UpdateRequest) MarshalJSON() ([]byte, error) {
	base := map[string]any{}
	if r.Name != "" {
		base["name"] = r.Name
	}
	if r.Description != "" {
		base["description"] = r.Description
	}
	if r.IsActive != nil {
		base["is_active"] = *r.IsActive
	}
	if r.RotationIntervalDays != 0 {
		base["rotation_interval_days"] = r.RotationIntervalDays
	}
	if r.ProjectID != "" {
		base["project_id"] = r.ProjectID
	}
	return marshalFlattened(base, r.Payload)
}

// RotateResponse acknowledges a rotation request.
type RotateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client talks to the data record endpoints through the dispatcher.
type Client struct {
	dispatcher *transport.Dispatcher
}

// New creates a records client.
func New(dispatcher *transport.Dispatcher) (*Client, error) {
	if dispatcher == nil {
		return nil, errors.New("[records.New] dispatcher is required")
	}
	return &Client{dispatcher: dispatcher}, nil
}

// List returns the current user's records, optionally filtered by type.
func (c *Client) List(ctx context.Context, dataType Type) ([]ListItem, error) {
	query := url.Values{}
	if dataType != "" {
		query.Set("data_type", string(dataType))
	}
	var out []ListItem
	if err := c.dispatcher.DoQuery(ctx, http.MethodGet, basePath, query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProject returns the records visible within a project.
func (c *Client) ListProject(ctx context.Context, projectID string, dataType Type) ([]ListItem, error) {
	query := url.Values{}
	if dataType != "" {
		query.Set("data_type", string(dataType))
	}
	path := fmt.Sprintf("%s/project/%s", basePath, url.PathEscape(projectID))
	var out []ListItem
	if err := c.dispatcher.DoQuery(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one record with its decrypted payload.
func (c *Client) Get(ctx context.Context, id string) (*Record, error) {
	var out Record
	if err := c.dispatcher.Do(ctx, http.MethodGet, itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new record, optionally inside a project.
func (c *Client) Create(ctx context.Context, req CreateRequest, projectID string) (*Record, error) {
	query := url.Values{}
	if projectID != "" {
		query.Set("project_id", projectID)
	}
	var out Record
	if err := c.dispatcher.DoQuery(ctx, http.MethodPost, basePath, query, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches a record.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*Record, error) {
	var out Record
	if err := c.dispatcher.Do(ctx, http.MethodPut, itemPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.dispatcher.Do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

// Rotate asks the backend to re-encrypt the record under a fresh key.
func (c *Client) Rotate(ctx context.Context, id string) (*RotateResponse, error) {
	var out RotateResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, itemPath(id)+"/rotate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func itemPath(id string) string {
	return fmt.Sprintf("%s/%s", basePath, url.PathEscape(id))
}
