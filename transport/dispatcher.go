// Package transport is the sole path between the client and the backend.
// Every outbound call gets the bearer token attached, and an authorization
// failure triggers exactly one token refresh followed by exactly one retry
// before the session is declared dead.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "vaultctl/internal/errors"
	"vaultctl/session"
)

const refreshPath = "/auth/refresh"

// Dispatcher wraps an HTTP client with the refresh-on-401 contract.
//
// Known limitation: concurrent requests that hit 401 at the same time each
// attempt their own refresh; refreshes are not de-duplicated.
type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	store      *session.Store
	logger     zerolog.Logger
}

// Option defines a function type to modify the Dispatcher instance.
type Option func(*Dispatcher)

// WithHTTPClient sets the underlying HTTP client (primarily for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request flow logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher for the backend at baseURL, reading and updating
// credentials through store.
func New(baseURL string, store *session.Store, options ...Option) (*Dispatcher, error) {
	if baseURL == "" {
		return nil, errors.New("[transport.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[transport.New] store is required")
	}

	d := &Dispatcher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(d)
	}
	return d, nil
}

// BaseURL returns the backend base URL.
func (d *Dispatcher) BaseURL() string {
	return d.baseURL
}

// Do sends an authenticated JSON request and decodes a 2xx response body
// into out (out may be nil). Non-401 responses pass through verbatim:
// business errors come back as *errors.Error values, and transport-level
// failures map to network_error without touching the session.
func (d *Dispatcher) Do(ctx context.Context, method, path string, body, out any) error {
	return d.DoQuery(ctx, method, path, nil, body, out)
}

// DoQuery is Do with URL query parameters.
func (d *Dispatcher) DoQuery(ctx context.Context, method, path string, query url.Values, body, out any) error {
	sess := d.store.Session()

	status, data, err := d.send(ctx, method, path, query, body, sess.AccessToken)
	if err != nil {
		return apperrors.Network(err)
	}
	if status != http.StatusUnauthorized {
		return finish(status, data, out)
	}

	// Re-read: a concurrent refresh may have already rotated the tokens.
	refreshToken := d.store.Session().RefreshToken
	if refreshToken == "" {
		_ = d.store.Logout()
		failure := decodeError(status, data)
		failure.Reauthenticate = true
		return failure
	}

	accessToken, rotatedRefresh, err := d.refresh(ctx, refreshToken)
	if err != nil {
		d.logger.Debug().Str("path", path).Msg("token refresh failed, clearing session")
		_ = d.store.Logout()
		return &apperrors.Error{
			Code:           apperrors.CodeReauthenticationRequired,
			Message:        "session expired, please sign in again",
			Status:         http.StatusUnauthorized,
			Reauthenticate: true,
		}
	}

	if err := d.store.SetTokens(accessToken, rotatedRefresh); err != nil {
		return errors.Wrap(err, "[Dispatcher.DoQuery] SetTokens")
	}

	// Exactly one retry; a second 401 is returned as-is, never looped.
	status, data, err = d.send(ctx, method, path, query, body, accessToken)
	if err != nil {
		return apperrors.Network(err)
	}
	return finish(status, data, out)
}

// send performs one HTTP round trip and returns the status and raw body.
// A returned error means no usable response was received.
func (d *Dispatcher) send(ctx context.Context, method, path string, query url.Values, body any, accessToken string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, errors.Wrap(err, "[Dispatcher.send] marshal body")
		}
		reader = bytes.NewReader(payload)
	}

	target := d.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Dispatcher.send] NewRequestWithContext")
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Debug().Str("method", method).Str("path", path).Str("request_id", requestID).Err(err).Msg("request failed")
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Dispatcher.send] read body")
	}

	d.logger.Debug().Str("method", method).Str("path", path).Str("request_id", requestID).Int("status", resp.StatusCode).Msg("request completed")
	return resp.StatusCode, data, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// refresh mints a new access token. It is called only from the 401 retry
// path; nothing else may invoke the refresh endpoint.
func (d *Dispatcher) refresh(ctx context.Context, refreshToken string) (access, rotatedRefresh string, err error) {
	d.logger.Debug().Msg("access token rejected, attempting refresh")

	status, data, err := d.send(ctx, http.MethodPost, refreshPath, nil, refreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return "", "", errors.Wrap(err, "[Dispatcher.refresh] send")
	}
	if status < 200 || status >= 300 {
		return "", "", decodeError(status, data)
	}

	var resp refreshResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", "", errors.Wrap(err, "[Dispatcher.refresh] unmarshal")
	}
	if resp.AccessToken == "" {
		return "", "", errors.New("[Dispatcher.refresh] empty access token in response")
	}
	return resp.AccessToken, resp.RefreshToken, nil
}

// finish decodes a completed response: 2xx into out, anything else into a
// structured failure. Business-level errors are never interpreted here.
func finish(status int, data []byte, out any) error {
	if status >= 200 && status < 300 {
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "[transport.finish] unmarshal response")
		}
		return nil
	}
	return decodeError(status, data)
}

type errorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func decodeError(status int, data []byte) *apperrors.Error {
	var payload errorResponse
	_ = json.Unmarshal(data, &payload)

	code := apperrors.Code(payload.Error)
	if code == "" {
		code = apperrors.DefaultCode(status)
	}
	message := payload.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return apperrors.New(code, message, status)
}
