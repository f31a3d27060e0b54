package authkit

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingConfiguration is returned when a required key has no value.
	// The wrapping error names the key.
	ErrMissingConfiguration = errors.New("authkit: missing required configuration value")

	// ErrValidation indicates a configuration or option value is invalid.
	ErrValidation = errors.New("authkit: invalid configuration")

	// ErrCookiePasswordTooShort is returned by Configure for a cookie password
	// shorter than MinCookiePasswordLength. It wraps ErrValidation.
	ErrCookiePasswordTooShort = fmt.Errorf("%w: cookiePassword must be at least %d characters long", ErrValidation, MinCookiePasswordLength)

	// ErrNotConfigured is returned by GetSessionStorage before any Configure call.
	ErrNotConfigured = errors.New("authkit: session storage was never configured, call ConfigureSessionStorage before reading it")

	ErrUnknownKey         = errors.New("authkit: unknown configuration key")
	ErrInvalidValueType   = errors.New("authkit: configuration value has unexpected type")
	ErrParsingEnvironment = errors.New("authkit: failed to parse environment variables into configuration")

	// ErrNoSession indicates the request carries no authenticated session.
	ErrNoSession = errors.New("authkit: no authenticated session")

	// ErrInvalidState indicates the state parameter is not one produced by EncodeState.
	ErrInvalidState = errors.New("authkit: invalid state parameter")
)
