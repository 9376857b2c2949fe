package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	apperrors "vaultctl/internal/errors"
	"vaultctl/users"
)

// HandoffState models the two halves of a redirect-based OAuth login: the
// hand-off to the external provider and the later resumption at the
// callback. Nothing in between is an API call.
type HandoffState int

const (
	// AwaitingRedirect means the user-agent has been (or is about to be)
	// sent to the backend-hosted authorization URL. No session mutation has
	// happened.
	AwaitingRedirect HandoffState = iota
	// ResumingFromCallback means the provider redirected back and the
	// callback query is being evaluated.
	ResumingFromCallback
)

func (s HandoffState) String() string {
	switch s {
	case AwaitingRedirect:
		return "awaiting_redirect"
	case ResumingFromCallback:
		return "resuming_from_callback"
	default:
		return "unknown"
	}
}

// Handoff describes an in-progress OAuth login.
type Handoff struct {
	Provider     string
	AuthorizeURL string
	State        HandoffState
}

// OAuthLogin begins a redirect-based login with the named provider. It only
// builds the backend-hosted authorization URL; the caller must navigate the
// user-agent there. The session is not touched until ResumeCallback.
func (c *Client) OAuthLogin(provider string) (*Handoff, error) {
	if provider == "" {
		return nil, errors.New("[Client.OAuthLogin] provider is required")
	}
	return &Handoff{
		Provider:     provider,
		AuthorizeURL: fmt.Sprintf("%s/auth/%s", c.dispatcher.BaseURL(), url.PathEscape(provider)),
		State:        AwaitingRedirect,
	}, nil
}

// ResumeCallback evaluates the query parameters of the provider's redirect
// back (`success`, `error`, `error_description`, and optionally a fresh
// token pair). A failed callback yields an oauth_failed value with a message
// derived from the parameters and leaves the session untouched. A successful
// one stores any tokens carried on the callback and confirms the session via
// the status-check probe.
func (c *Client) ResumeCallback(ctx context.Context, query url.Values) (*users.User, error) {
	if query.Get("success") != "true" {
		return nil, apperrors.New(apperrors.CodeOAuthFailed, callbackFailureMessage(query), 0)
	}

	if accessToken := query.Get("access_token"); accessToken != "" {
		if err := c.store.SetTokens(accessToken, query.Get("refresh_token")); err != nil {
			return nil, errors.Wrap(err, "[Client.ResumeCallback] SetTokens")
		}
	}

	return c.CheckAuthStatus(ctx)
}

func callbackFailureMessage(query url.Values) string {
	code := query.Get("error")
	description := query.Get("error_description")
	switch {
	case code != "" && description != "":
		return fmt.Sprintf("%s: %s", code, description)
	case description != "":
		return description
	case code != "":
		return code
	default:
		return "authorization was not completed"
	}
}
