// Package audit queries the backend's audit trail.
package audit

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"vaultctl/transport"
)

const basePath = "/api/audit"

// Log is one audit trail entry.
type Log struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	Status       string    `json:"status"`
	UserID       string    `json:"user_id,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListResponse is a page of audit entries.
type ListResponse struct {
	Logs  []Log `json:"logs"`
	Count int   `json:"count"`
}

// Filters narrows an audit query. Nil fields are omitted from the request.
type Filters struct {
	UserID       *string
	Action       *string
	ResourceType *string
	Limit        *int
	Offset       *int
}

func (f *Filters) query() url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	if f.UserID != nil {
		q.Set("user_id", *f.UserID)
	}
	if f.Action != nil {
		q.Set("action", *f.Action)
	}
	if f.ResourceType != nil {
		q.Set("resource_type", *f.ResourceType)
	}
	if f.Limit != nil {
		q.Set("limit", strconv.Itoa(*f.Limit))
	}
	if f.Offset != nil {
		q.Set("offset", strconv.Itoa(*f.Offset))
	}
	return q
}

// Client talks to the audit endpoints through the dispatcher.
type Client struct {
	dispatcher *transport.Dispatcher
}

// New creates an audit client.
func New(dispatcher *transport.Dispatcher) (*Client, error) {
	if dispatcher == nil {
		return nil, errors.New("[audit.New] dispatcher is required")
	}
	return &Client{dispatcher: dispatcher}, nil
}

// Logs returns a filtered page of the audit trail.
func (c *Client) Logs(ctx context.Context, filters *Filters) (*ListResponse, error) {
	var out ListResponse
	if err := c.dispatcher.DoQuery(ctx, http.MethodGet, basePath, filters.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
