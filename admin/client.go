// Package admin is the typed client for role-gated administration: user
// management and cross-user data oversight. The backend enforces the admin
// requirement; the gate package keeps non-admins out of these code paths in
// the first place.
package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"vaultctl/transport"
	"vaultctl/users"
)

const (
	usersPath = "/auth/admin/users"
	dataPath  = "/api/admin/data"
)

// DataItem is an administrator's summary view of any user's record.
type DataItem struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type updateRoleRequest struct {
	Role users.Role `json:"role"`
}

// Client talks to the admin endpoints through the dispatcher.
type Client struct {
	dispatcher *transport.Dispatcher
}

// New creates an admin client.
func New(dispatcher *transport.Dispatcher) (*Client, error) {
	if dispatcher == nil {
		return nil, errors.New("[admin.New] dispatcher is required")
	}
	return &Client{dispatcher: dispatcher}, nil
}

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]users.ManagedUser, error) {
	var out []users.ManagedUser
	if err := c.dispatcher.Do(ctx, http.MethodGet, usersPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns one account.
func (c *Client) GetUser(ctx context.Context, userID int64) (*users.ManagedUser, error) {
	var out users.ManagedUser
	if err := c.dispatcher.Do(ctx, http.MethodGet, userPath(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUserRole changes an account's system-wide role.
func (c *Client) UpdateUserRole(ctx context.Context, userID int64, role users.Role) (*users.ManagedUser, error) {
	if !role.IsValid() {
		return nil, errors.Errorf("[Client.UpdateUserRole] invalid role %q", role)
	}
	var out users.ManagedUser
	if err := c.dispatcher.Do(ctx, http.MethodPut, userPath(userID), updateRoleRequest{Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.dispatcher.Do(ctx, http.MethodDelete, userPath(userID), nil, nil)
}

// ListAllData returns every user's records.
func (c *Client) ListAllData(ctx context.Context) ([]DataItem, error) {
	var out []DataItem
	if err := c.dispatcher.Do(ctx, http.MethodGet, dataPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUserData returns one user's records.
func (c *Client) ListUserData(ctx context.Context, userID int64) ([]DataItem, error) {
	var out []DataItem
	if err := c.dispatcher.Do(ctx, http.MethodGet, fmt.Sprintf("%s/user/%d", dataPath, userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAnyData removes any user's record.
func (c *Client) DeleteAnyData(ctx context.Context, dataID string) error {
	return c.dispatcher.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%s", dataPath, dataID), nil, nil)
}

func userPath(userID int64) string {
	return fmt.Sprintf("%s/%d", usersPath, userID)
}
