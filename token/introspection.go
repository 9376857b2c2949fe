// Package token provides local, display-only introspection of the opaque
// access token. The backend is the only party that verifies signatures; the
// client merely peeks at the claims to show expiry and identity hints.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"vaultctl/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Introspection captures the metadata carried inside an access token.
// The 'Active' field reflects only local expiry; a token the backend has
// revoked still shows Active here.
type Introspection struct {
	Active bool     `json:"active"`
	Sub    *string  `json:"sub,omitempty"`
	Iss    *string  `json:"iss,omitempty"`
	Exp    *int64   `json:"exp,omitempty"`
	Iat    *int64   `json:"iat,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// Introspect parses the raw token without verifying its signature and
// extracts the standard claims. An empty token yields an inactive result.
func Introspect(raw string) (*Introspection, error) {
	if strings.TrimSpace(raw) == "" {
		return &Introspection{Active: false}, nil
	}

	unverified, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return &Introspection{Active: false}, errors.Wrap(err, "[Introspect] ParseUnverified")
	}

	claims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return &Introspection{Active: false}, errors.New("[Introspect] error extracting claims")
	}

	sub, _ := claims["sub"].(string)
	iss, _ := claims["iss"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	iatInt := int64(iat)
	expInt := int64(exp)

	var roles []string
	if claimRoles, ok := claims["roles"].([]any); ok {
		roles = utils.ToStringSlice(claimRoles)
	}

	active := expInt == 0 || NowTimeFunc().Unix() <= expInt

	return &Introspection{
		Active: active,
		Sub:    &sub,
		Iss:    &iss,
		Exp:    &expInt,
		Iat:    &iatInt,
		Roles:  roles,
	}, nil
}

// ExpiresAt returns the expiry time, or the zero time when the token
// carries no exp claim.
func (i *Introspection) ExpiresAt() time.Time {
	if i == nil || utils.Value(i.Exp) == 0 {
		return time.Time{}
	}
	return time.Unix(*i.Exp, 0)
}
