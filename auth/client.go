// Package auth implements the action set that mutates the credential store:
// login, register, OAuth handoff, logout, logout-all, and the status-check
// probe. Expected failures come back as *errors.Error values with coarse
// machine-readable codes; nothing here panics on bad input or a sad backend.
package auth

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "vaultctl/internal/errors"
	"vaultctl/session"
	"vaultctl/transport"
	"vaultctl/users"
)

const (
	loginPath     = "/auth/login"
	registerPath  = "/auth/register"
	logoutPath    = "/auth/logout"
	logoutAllPath = "/auth/logout-all"
	mePath        = "/auth/me"
	sessionsPath  = "/auth/sessions"
)

// Client is the auth action set.
type Client struct {
	dispatcher *transport.Dispatcher
	store      *session.Store
	validate   *validator.Validate
	logger     zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithLogger sets the logger for best-effort failure reporting.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates the auth client with required dependencies.
func New(dispatcher *transport.Dispatcher, store *session.Store, options ...Option) (*Client, error) {
	if dispatcher == nil {
		return nil, errors.New("[auth.New] dispatcher is required")
	}
	if store == nil {
		return nil, errors.New("[auth.New] store is required")
	}

	c := &Client{
		dispatcher: dispatcher,
		store:      store,
		validate:   validator.New(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerInput struct {
	Name     string `validate:"omitempty,max=128"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// Login authenticates with email and password. On success the credential
// store is replaced wholesale; expected failures carry codes such as
// invalid_credentials, validation_failed, or network_error.
func (c *Client) Login(ctx context.Context, email, password string) (*users.User, error) {
	if err := c.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "email and password are required", 0)
	}

	var resp LoginResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, loginPath, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, normalizeLoginErr(err)
	}

	if err := c.store.SetCredentials(&resp.User, resp.Tokens.AccessToken, resp.Tokens.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] SetCredentials")
	}
	return &resp.User, nil
}

// Register creates an account and signs in. A duplicate email surfaces as
// the email_exists code.
func (c *Client) Register(ctx context.Context, name, email, password string) (*users.User, error) {
	if err := c.validate.Struct(registerInput{Name: name, Email: email, Password: password}); err != nil {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "a valid email and a password of at least 8 characters are required", 0)
	}

	var resp LoginResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, registerPath, registerRequest{Email: email, Name: name, Password: password}, &resp); err != nil {
		return nil, normalizeRegisterErr(err)
	}

	if err := c.store.SetCredentials(&resp.User, resp.Tokens.AccessToken, resp.Tokens.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[Client.Register] SetCredentials")
	}
	return &resp.User, nil
}

// RevokeResult reports the outcome of a best-effort server-side revocation.
// The local session is cleared regardless; Attempted and Err exist so the
// caller (and tests) can see that the revoke was tried and how it went.
type RevokeResult struct {
	Attempted     bool
	RevokedTokens int
	Err           error
}

// Logout revokes the current refresh token server-side and clears the
// credential store. The clear happens even when the revoke call fails: the
// client must never be left looking authenticated.
func (c *Client) Logout(ctx context.Context) (RevokeResult, error) {
	result := RevokeResult{}

	if refreshToken := c.store.Session().RefreshToken; refreshToken != "" {
		result.Attempted = true
		var resp MessageResponse
		if err := c.dispatcher.Do(ctx, http.MethodPost, logoutPath, revokeRequest{Token: refreshToken}, &resp); err != nil {
			result.Err = err
			c.logger.Warn().Str("code", string(apperrors.CodeOf(err))).Msg("server-side logout failed, clearing local session anyway")
		}
	}

	if err := c.store.Logout(); err != nil {
		return result, errors.Wrap(err, "[Client.Logout] store.Logout")
	}
	return result, nil
}

// LogoutAll revokes every session of the current user server-side, then
// clears the local store with the same always-clearing guarantee as Logout.
func (c *Client) LogoutAll(ctx context.Context) (RevokeResult, error) {
	result := RevokeResult{Attempted: true}

	var resp LogoutAllResponse
	if err := c.dispatcher.Do(ctx, http.MethodPost, logoutAllPath, nil, &resp); err != nil {
		result.Err = err
		c.logger.Warn().Str("code", string(apperrors.CodeOf(err))).Msg("logout-all failed, clearing local session anyway")
	} else {
		result.RevokedTokens = resp.RevokedTokens
	}

	if err := c.store.Logout(); err != nil {
		return result, errors.Wrap(err, "[Client.LogoutAll] store.Logout")
	}
	return result, nil
}

// CheckAuthStatus asks the backend who the current user is. On success the
// stored user record is refreshed; on any failure, including network errors,
// the session is cleared rather than left stale.
func (c *Client) CheckAuthStatus(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := c.dispatcher.Do(ctx, http.MethodGet, mePath, nil, &user); err != nil {
		if clearErr := c.store.Logout(); clearErr != nil {
			return nil, errors.Wrap(clearErr, "[Client.CheckAuthStatus] store.Logout")
		}
		return nil, err
	}

	if err := c.store.SetUser(&user); err != nil {
		return nil, errors.Wrap(err, "[Client.CheckAuthStatus] SetUser")
	}
	return &user, nil
}

// Sessions lists the active refresh-token sessions for the current user.
func (c *Client) Sessions(ctx context.Context) ([]SessionInfo, error) {
	var sessions []SessionInfo
	if err := c.dispatcher.Do(ctx, http.MethodGet, sessionsPath, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// normalizeLoginErr maps a bare 401 to invalid_credentials; backends that
// already send a code keep it.
func normalizeLoginErr(err error) error {
	var failure *apperrors.Error
	if errors.As(err, &failure) && failure.Code == apperrors.CodeAuthFailed {
		return apperrors.New(apperrors.CodeInvalidCredentials, "incorrect email or password", failure.Status)
	}
	return err
}

// normalizeRegisterErr maps a bare 409 to email_exists.
func normalizeRegisterErr(err error) error {
	var failure *apperrors.Error
	if errors.As(err, &failure) && failure.Code == apperrors.CodeConflict {
		return apperrors.New(apperrors.CodeEmailExists, "an account with this email already exists", failure.Status)
	}
	return err
}
