package workos

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey       = errors.New("workos: api key is required")
	ErrMissingClientID     = errors.New("workos: client id is required")
	ErrMissingRedirectURI  = errors.New("workos: redirect uri is required")
	ErrInvalidRedirectURI  = errors.New("workos: redirect uri must be an absolute url")
	ErrMissingSelector     = errors.New("workos: one of provider, connection id or organization id is required")
	ErrMissingCode         = errors.New("workos: authorization code is required")
	ErrMissingSessionID    = errors.New("workos: session id is required")
	ErrMissingRefreshToken = errors.New("workos: refresh token is required")
	ErrAuthentication      = errors.New("workos: authentication failed")
)

// AuthenticationError is returned when the API rejects an authentication
// request with an OAuth error code, e.g. "invalid_grant" or "sso_required".
type AuthenticationError struct {
	Code        string
	Description string
}

func (e *AuthenticationError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s: %s", ErrAuthentication, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", ErrAuthentication, e.Code, e.Description)
}

func (e *AuthenticationError) Unwrap() error {
	return ErrAuthentication
}

// AuthenticationErrorCode returns the API error code carried by err, if any.
func AuthenticationErrorCode(err error) string {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}
