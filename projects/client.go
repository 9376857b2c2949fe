// Package projects is the typed client for shared projects and their
// memberships.
package projects

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"vaultctl/transport"
)

const basePath = "/api/projects"

// Project is a shared container for data records.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy int64     `json:"created_by"`
}

// MemberRole is a project-scoped role, distinct from the system-wide role.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Member links a user to a project with a project-scoped role.
type Member struct {
	UserID    int64      `json:"user_id"`
	ProjectID string     `json:"project_id"`
	Role      MemberRole `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
}

type createRequest struct {
	Name string `json:"name"`
}

type updateRequest struct {
	Name string `json:"name"`
}

// AddMemberRequest adds a user to a project.
type AddMemberRequest struct {
	UserID int64      `json:"user_id"`
	Role   MemberRole `json:"role"`
}

// Client talks to the project endpoints through the dispatcher.
type Client struct {
	dispatcher *transport.Dispatcher
}

// New creates a projects client.
func New(dispatcher *transport.Dispatcher) (*Client, error) {
	if dispatcher == nil {
		return nil, errors.New("[projects.New] dispatcher is required")
	}
	return &Client{dispatcher: dispatcher}, nil
}

// List returns the projects visible to the current user.
func (c *Client) List(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.dispatcher.Do(ctx, http.MethodGet, basePath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one project.
func (c *Client) Get(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.dispatcher.Do(ctx, http.MethodGet, itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create makes a new project owned by the current user.
func (c *Client) Create(ctx context.Context, name string) (*Project, error) {
	var out Project
	if err := c.dispatcher.Do(ctx, http.MethodPost, basePath, createRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update renames a project.
func (c *Client) Update(ctx context.Context, id, name string) (*Project, error) {
	var out Project
	if err := c.dispatcher.Do(ctx, http.MethodPut, itemPath(id), updateRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a project.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.dispatcher.Do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

// Members lists a project's memberships.
func (c *Client) Members(ctx context.Context, projectID string) ([]Member, error) {
	var out []Member
	if err := c.dispatcher.Do(ctx, http.MethodGet, itemPath(projectID)+"/members", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember adds a user to a project.
func (c *Client) AddMember(ctx context.Context, projectID string, req AddMemberRequest) (*Member, error) {
	var out Member
	if err := c.dispatcher.Do(ctx, http.MethodPost, itemPath(projectID)+"/members", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveMember removes a user from a project.
func (c *Client) RemoveMember(ctx context.Context, projectID string, userID int64) error {
	path := fmt.Sprintf("%s/members/%d", itemPath(projectID), userID)
	return c.dispatcher.Do(ctx, http.MethodDelete, path, nil, nil)
}

func itemPath(id string) string {
	return fmt.Sprintf("%s/%s", basePath, url.PathEscape(id))
}
