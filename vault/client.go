// Package vault drives the backend's seal lifecycle and encrypt/decrypt
// passthrough. All cryptography is backend-owned; this client only moves
// opaque payloads.
package vault

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"vaultctl/transport"
)

const (
	initPath    = "/api/crypto/init"
	unsealPath  = "/api/crypto/unseal"
	sealPath    = "/api/crypto/seal"
	statusPath  = "/api/crypto/status"
	encryptPath = "/api/crypto/encrypt"
	decryptPath = "/api/crypto/decrypt"
)

// Status describes the vault's seal state.
type Status struct {
	Sealed         bool       `json:"sealed"`
	Initialized    bool       `json:"initialized"`
	Version        string     `json:"version"`
	Uptime         int64      `json:"uptime,omitempty"`
	LastSealTime   *time.Time `json:"last_seal_time,omitempty"`
	LastUnsealTime *time.Time `json:"last_unseal_time,omitempty"`
}

// StatusResponse wraps a Status with an operation outcome.
type StatusResponse struct {
	Status    string    `json:"status"` // "success" | "error" | "warning" | "info"
	Vault     Status    `json:"vault"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// InitRequest initializes the vault's root key (admin only).
type InitRequest struct {
	ExternalToken string `json:"external_token"`
	RootKeyName   string `json:"root_key_name,omitempty"`
}

// UnsealRequest unseals the vault (admin only).
type UnsealRequest struct {
	ExternalToken string `json:"external_token"`
}

// EncryptRequest asks the backend to encrypt a payload.
type EncryptRequest struct {
	Data      string `json:"data"`
	KeyPhrase string `json:"keyPhrase,omitempty"`
}

// EncryptResponse carries the ciphertext back.
type EncryptResponse struct {
	Data string `json:"data"`
}

// DecryptRequest asks the backend to decrypt a payload.
type DecryptRequest struct {
	Data      string `json:"data"`
	KeyPhrase string `json:"keyPhrase,omitempty"`
}

// DecryptResponse carries the plaintext back.
type DecryptResponse struct {
	Data string `json:"data"`
}

// Client talks to the crypto endpoints through the dispatcher.
type Client struct {
	dispatcher *transport.Dispatcher
}

// New creates a vault client.
func New(dispatcher *transport.Dispatcher) (*Client, error) {
	if dispatcher == nil {
		return nil, errors.New("[vault.New] dispatcher is required")
	}
	return &Client{dispatcher: dispatcher}, nil
}

// Init initializes the vault. Admin only.
func (c *Client) Init(ctx context.Context, req InitRequest) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, initPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unseal unseals the vault. Admin only.
func (c *Client) Unseal(ctx context.Context, req UnsealRequest) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, unsealPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Seal seals the vault. Admin only.
func (c *Client) Seal(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, sealPath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStatus reports the current seal state.
func (c *Client) GetStatus(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.dispatcher.Do(ctx, http.MethodGet, statusPath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Encrypt encrypts data server-side.
func (c *Client) Encrypt(ctx context.Context, req EncryptRequest) (*EncryptResponse, error) {
	var resp EncryptResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, encryptPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Decrypt decrypts data server-side.
func (c *Client) Decrypt(ctx context.Context, req DecryptRequest) (*DecryptResponse, error) {
	var resp DecryptResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, decryptPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
