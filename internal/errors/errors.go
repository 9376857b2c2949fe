// Package errors defines the failure model shared by the session manager and
// the resource clients. Expected failures (bad credentials, duplicate email,
// sealed vault, ...) are returned as *Error values carrying a coarse
// machine-readable code and a human-readable message; they are never panics.
package errors

import (
	"errors"
	"fmt"
)

// Code is a coarse machine-readable failure code. The UI layer switches on
// codes, never on message text.
type Code string

const (
	// Authentication
	CodeInvalidCredentials       Code = "invalid_credentials"
	CodeAuthFailed               Code = "auth_failed"
	CodeReauthenticationRequired Code = "reauthentication_required"

	// Registration
	CodeEmailExists        Code = "email_exists"
	CodeRegistrationFailed Code = "registration_failed"

	// OAuth handoff
	CodeOAuthFailed Code = "oauth_failed"

	// Request validation (client side, before any network call)
	CodeValidationFailed Code = "validation_failed"

	// Transport-level failure: no response was received. Distinct from every
	// business failure so the caller can tell "try again" from "fix your input".
	CodeNetworkError Code = "network_error"

	// Generic server responses without a code in the body
	CodeBadRequest  Code = "bad_request"
	CodeForbidden   Code = "forbidden"
	CodeNotFound    Code = "not_found"
	CodeConflict    Code = "conflict"
	CodeServerError Code = "server_error"
)

// Error is a structured failure: a code for machines, a message for humans,
// and the HTTP status that produced it (0 for transport-level failures).
type Error struct {
	Code    Code
	Message string
	Status  int

	// Reauthenticate is set by the dispatcher when the session has been
	// cleared and the user must sign in again before retrying anything.
	Reauthenticate bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an expected failure value.
func New(code Code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Network wraps a transport-level error (no response received).
func Network(err error) *Error {
	msg := "network error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: CodeNetworkError, Message: msg}
}

// CodeOf extracts the failure code from an error chain, or empty when the
// error is not a structured failure.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given failure code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// NeedsReauthentication reports whether err is terminal for the session:
// the credential store has been cleared and the caller must sign in again.
func NeedsReauthentication(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Reauthenticate
	}
	return false
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// DefaultCode maps an HTTP status to a fallback code for responses whose
// body carries no machine-readable error.
func DefaultCode(status int) Code {
	switch {
	case status == 400:
		return CodeBadRequest
	case status == 401:
		return CodeAuthFailed
	case status == 403:
		return CodeForbidden
	case status == 404:
		return CodeNotFound
	case status == 409:
		return CodeConflict
	case status >= 500:
		return CodeServerError
	default:
		return CodeBadRequest
	}
}
