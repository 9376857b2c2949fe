// Package security exposes the backend's password leak check. The check
// itself (and whatever breach corpus backs it) is server-side; the password
// travels once over TLS and is never stored or logged here.
package security

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"vaultctl/transport"
)

const checkLeakPath = "/api/security/check-leak"

// LeakCheckResult reports whether a password appears in known breaches.
type LeakCheckResult struct {
	IsLeaked bool `json:"is_leaked"`
	Count    int  `json:"count"`
}

type checkRequest struct {
	Password string `json:"password"`
}

// Client talks to the security endpoints through the dispatcher.
type Client struct {
	dispatcher *transport.Dispatcher
}

// New creates a security client.
func New(dispatcher *transport.Dispatcher) (*Client, error) {
	if dispatcher == nil {
		return nil, errors.New("[security.New] dispatcher is required")
	}
	return &Client{dispatcher: dispatcher}, nil
}

// CheckLeak asks the backend whether the password is known-leaked.
func (c *Client) CheckLeak(ctx context.Context, password string) (*LeakCheckResult, error) {
	if password == "" {
		return nil, errors.New("[Client.CheckLeak] password is required")
	}
	var out LeakCheckResult
	if err := c.dispatcher.Do(ctx, http.MethodPost, checkLeakPath, checkRequest{Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
