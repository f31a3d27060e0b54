package authkit

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/authkit/pkg/workos"
)

// ProviderAuthKit selects the hosted login UI.
const ProviderAuthKit = "authkit"

type ScreenHint = workos.ScreenHint

const (
	ScreenHintSignIn = workos.ScreenHintSignIn
	ScreenHintSignUp = workos.ScreenHintSignUp
)

// AuthorizationURLOptions control GetAuthorizationURL. All fields are optional.
type AuthorizationURLOptions struct {
	// ReturnPathname is carried through the login in the state parameter.
	ReturnPathname string
	ScreenHint     ScreenHint
	OrganizationID string
	LoginHint      string
	// RedirectURI overrides the configured redirectUri.
	RedirectURI string
	// Config defaults to a configuration built from the environment.
	Config ConfigSource
}

// State is the payload of the state parameter.
type State struct {
	ReturnPathname string `json:"returnPathname"`
}

// EncodeState serializes s as standard base64 of its JSON form.
func EncodeState(s State) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeState reverses EncodeState.
func DecodeState(raw string) (State, error) {
	var s State

	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return s, nil
}

// GetAuthorizationURL returns the URL of the hosted login page for the
// configured client. The state parameter is present only when
// ReturnPathname is set.
func GetAuthorizationURL(opts AuthorizationURLOptions) (string, error) {
	cfg, err := ResolveConfiguration(opts.Config)
	if err != nil {
		return "", err
	}

	client, err := NewWorkOS(cfg)
	if err != nil {
		return "", err
	}

	clientID, err := cfg.String(KeyClientID)
	if err != nil {
		return "", err
	}

	redirectURI := opts.RedirectURI
	if redirectURI == "" {
		if redirectURI, err = cfg.String(KeyRedirectURI); err != nil {
			return "", err
		}
	}

	var state string
	if opts.ReturnPathname != "" {
		if state, err = EncodeState(State{ReturnPathname: opts.ReturnPathname}); err != nil {
			return "", err
		}
	}

	return client.UserManagement().GetAuthorizationURL(workos.AuthorizationURLOptions{
		ClientID:       clientID,
		RedirectURI:    redirectURI,
		Provider:       ProviderAuthKit,
		OrganizationID: opts.OrganizationID,
		State:          state,
		ScreenHint:     opts.ScreenHint,
		LoginHint:      opts.LoginHint,
	})
}

// GetSignInURL is GetAuthorizationURL with the sign-in screen.
func GetSignInURL(opts AuthorizationURLOptions) (string, error) {
	opts.ScreenHint = ScreenHintSignIn
	return GetAuthorizationURL(opts)
}

// GetSignUpURL is GetAuthorizationURL with the sign-up screen.
func GetSignUpURL(opts AuthorizationURLOptions) (string, error) {
	opts.ScreenHint = ScreenHintSignUp
	return GetAuthorizationURL(opts)
}
