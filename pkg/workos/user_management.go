package workos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
)

const (
	authorizePath    = "/user_management/authorize"
	authenticatePath = "/user_management/authenticate"
	logoutPath       = "/user_management/sessions/logout"
)

// ScreenHint selects which screen the hosted UI shows first.
type ScreenHint string

const (
	ScreenHintSignIn ScreenHint = "sign-in"
	ScreenHintSignUp ScreenHint = "sign-up"
)

// UserManagement groups the user management endpoints.
type UserManagement struct {
	client *Client
}

// AuthorizationURLOptions are the query parameters of the authorize endpoint.
// Empty fields are omitted.
type AuthorizationURLOptions struct {
	ClientID       string
	RedirectURI    string
	Provider       string
	ConnectionID   string
	OrganizationID string
	State          string
	ScreenHint     ScreenHint
	LoginHint      string
	DomainHint     string
}

// GetAuthorizationURL builds the URL that starts an interactive login.
func (um *UserManagement) GetAuthorizationURL(opts AuthorizationURLOptions) (string, error) {
	if opts.ClientID == "" {
		return "", ErrMissingClientID
	}
	if opts.RedirectURI == "" {
		return "", ErrMissingRedirectURI
	}
	if u, err := url.Parse(opts.RedirectURI); err != nil || !u.IsAbs() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRedirectURI, opts.RedirectURI)
	}
	if opts.Provider == "" && opts.ConnectionID == "" && opts.OrganizationID == "" {
		return "", ErrMissingSelector
	}

	cfg := &oauth2.Config{
		ClientID:    opts.ClientID,
		RedirectURL: opts.RedirectURI,
		Endpoint:    oauth2.Endpoint{AuthURL: um.client.endpoint(authorizePath)},
	}

	params := make([]oauth2.AuthCodeOption, 0, 6)
	for key, value := range map[string]string{
		"provider":        opts.Provider,
		"connection_id":   opts.ConnectionID,
		"organization_id": opts.OrganizationID,
		"screen_hint":     string(opts.ScreenHint),
		"login_hint":      opts.LoginHint,
		"domain_hint":     opts.DomainHint,
	} {
		if value != "" {
			params = append(params, oauth2.SetAuthURLParam(key, value))
		}
	}

	return cfg.AuthCodeURL(opts.State, params...), nil
}

// AuthenticateWithCodeOptions describe a code exchange.
type AuthenticateWithCodeOptions struct {
	ClientID  string
	Code      string
	IPAddress string
	UserAgent string
}

// User is the authenticated user returned by the API.
type User struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	EmailVerified     bool   `json:"email_verified"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

// Impersonator is set when an admin signed in as the user.
type Impersonator struct {
	Email  string `json:"email"`
	Reason string `json:"reason,omitempty"`
}

// AuthenticationResponse is the result of a successful code exchange.
type AuthenticationResponse struct {
	User                 User          `json:"user"`
	OrganizationID       string        `json:"organization_id,omitempty"`
	AccessToken          string        `json:"access_token"`
	RefreshToken         string        `json:"refresh_token"`
	AuthenticationMethod string        `json:"authentication_method,omitempty"`
	Impersonator         *Impersonator `json:"impersonator,omitempty"`
}

// AuthenticateWithCode exchanges an authorization code for tokens and the user profile.
func (um *UserManagement) AuthenticateWithCode(ctx context.Context, opts AuthenticateWithCodeOptions) (*AuthenticationResponse, error) {
	if opts.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if opts.Code == "" {
		return nil, ErrMissingCode
	}

	params := make([]oauth2.AuthCodeOption, 0, 2)
	if opts.IPAddress != "" {
		params = append(params, oauth2.SetAuthURLParam("ip_address", opts.IPAddress))
	}
	if opts.UserAgent != "" {
		params = append(params, oauth2.SetAuthURLParam("user_agent", opts.UserAgent))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, um.client.http)
	token, err := um.oauthConfig(opts.ClientID).Exchange(ctx, opts.Code, params...)
	if err != nil {
		return nil, authenticationError(err)
	}
	return newAuthenticationResponse(token)
}

// AuthenticateWithRefreshTokenOptions describe a refresh. A non-empty
// OrganizationID issues the new tokens for that organization.
type AuthenticateWithRefreshTokenOptions struct {
	ClientID       string
	RefreshToken   string
	OrganizationID string
	IPAddress      string
	UserAgent      string
}

// AuthenticateWithRefreshToken trades a refresh token for a new token pair.
// Refresh tokens are single use: the returned RefreshToken replaces the old one.
func (um *UserManagement) AuthenticateWithRefreshToken(ctx context.Context, opts AuthenticateWithRefreshTokenOptions) (*AuthenticationResponse, error) {
	if opts.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if opts.RefreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	extra := url.Values{}
	for key, value := range map[string]string{
		"organization_id": opts.OrganizationID,
		"ip_address":      opts.IPAddress,
		"user_agent":      opts.UserAgent,
	} {
		if value != "" {
			extra.Set(key, value)
		}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, um.client.withFormParams(extra))
	token, err := um.oauthConfig(opts.ClientID).
		TokenSource(ctx, &oauth2.Token{RefreshToken: opts.RefreshToken}).
		Token()
	if err != nil {
		return nil, authenticationError(err)
	}
	return newAuthenticationResponse(token)
}

// oauthConfig sends the API key as client secret in the form body.
func (um *UserManagement) oauthConfig(clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: um.client.apiKey,
		Endpoint: oauth2.Endpoint{
			TokenURL:  um.client.endpoint(authenticatePath),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func authenticationError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &AuthenticationError{
			Code:        retrieveErr.ErrorCode,
			Description: retrieveErr.ErrorDescription,
		}
	}
	return errors.Join(ErrAuthentication, err)
}

func newAuthenticationResponse(token *oauth2.Token) (*AuthenticationResponse, error) {
	resp := &AuthenticationResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if v, ok := token.Extra("organization_id").(string); ok {
		resp.OrganizationID = v
	}
	if v, ok := token.Extra("authentication_method").(string); ok {
		resp.AuthenticationMethod = v
	}
	if err := decodeExtra(token.Extra("user"), &resp.User); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if raw := token.Extra("impersonator"); raw != nil {
		resp.Impersonator = &Impersonator{}
		if err := decodeExtra(raw, resp.Impersonator); err != nil {
			return nil, fmt.Errorf("decode impersonator: %w", err)
		}
	}
	return resp, nil
}

// GetLogoutURL returns the URL that ends the hosted session and redirects to returnTo.
func (um *UserManagement) GetLogoutURL(sessionID, returnTo string) (string, error) {
	if sessionID == "" {
		return "", ErrMissingSessionID
	}

	q := url.Values{"session_id": {sessionID}}
	if returnTo != "" {
		q.Set("return_to", returnTo)
	}

	u := *um.client.baseURL
	u.Path = logoutPath
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// decodeExtra converts a generic JSON value from the token response into dst.
func decodeExtra(raw any, dst any) error {
	if raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
