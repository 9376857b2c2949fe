package auth

import (
	"time"

	"vaultctl/users"
)

// TokenPair is the credential pair minted by login and register.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// LoginResponse is the shape returned by /auth/login and /auth/register.
type LoginResponse struct {
	User   users.User `json:"user"`
	Tokens TokenPair  `json:"tokens"`
}

// MessageResponse is a bare acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// LogoutAllResponse reports how many server-side tokens were revoked.
type LogoutAllResponse struct {
	Message       string `json:"message"`
	RevokedTokens int    `json:"revoked_tokens"`
}

// SessionInfo describes one active refresh-token session on the server.
type SessionInfo struct {
	JTI       string    `json:"jti"`
	UserID    int64     `json:"user_id"`
	Device    string    `json:"device,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type revokeRequest struct {
	Token string `json:"token"`
}
