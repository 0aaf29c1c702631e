// ABOUTME: Error taxonomy for the API client
// ABOUTME: Sentinel for invalid sessions plus structured server error codes

package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means the server rejected the bearer token (expired or
// invalid). Callers must clear stored credentials when they see it.
var ErrUnauthorized = errors.New("unauthorized")

// Structured error codes emitted by the identity service. The client branches
// on these instead of matching substrings of the human-readable message.
const (
	CodeUserNotFound       = "user_not_found"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailRegistered    = "email_registered"
	CodeUsernameTaken      = "username_taken"
	CodeValidationFailed   = "validation_failed"
	CodeOAuthFailed        = "oauth_failed"
)

// APIError is a non-2xx response with a decoded error body. The message is
// surfaced to the user verbatim; Code drives any UI branching.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error: %s", e.Message)
}

// AsAPIError unwraps err into an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
