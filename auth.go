package authkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/authkit/pkg/jwt"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/workos"
)

// sessionKey holds the JSON-encoded AuthInfo in the session data.
const sessionKey = "authkit"

// AuthInfo is what a successful sign-in stores in the session.
type AuthInfo struct {
	User                 workos.User          `json:"user"`
	AccessToken          string               `json:"accessToken"`
	RefreshToken         string               `json:"refreshToken"`
	OrganizationID       string               `json:"organizationId,omitempty"`
	AuthenticationMethod string               `json:"authenticationMethod,omitempty"`
	Impersonator         *workos.Impersonator `json:"impersonator,omitempty"`
}

func newAuthInfo(resp *workos.AuthenticationResponse) *AuthInfo {
	return &AuthInfo{
		User:                 resp.User,
		AccessToken:          resp.AccessToken,
		RefreshToken:         resp.RefreshToken,
		OrganizationID:       resp.OrganizationID,
		AuthenticationMethod: resp.AuthenticationMethod,
		Impersonator:         resp.Impersonator,
	}
}

// Claims decodes the access token. The token is trusted because it only ever
// comes from the session.
func (a *AuthInfo) Claims() (*jwt.AccessTokenClaims, error) {
	var claims jwt.AccessTokenClaims
	if err := jwt.Decode(a.AccessToken, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// expiresWithin reports whether the access token expires within leeway.
// Tokens without readable claims are treated as opaque and never refreshed.
func (a *AuthInfo) expiresWithin(leeway time.Duration, now time.Time) bool {
	claims, err := a.Claims()
	if err != nil {
		return false
	}
	return claims.ExpiresWithin(leeway, now)
}

// SaveAuth stores info in sess. The caller commits the session.
func SaveAuth(sess *session.Session, info *AuthInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode auth info: %w", err)
	}
	sess.Set(sessionKey, string(b))
	return nil
}

// AuthFromSession returns the AuthInfo stored in sess or ErrNoSession.
func AuthFromSession(sess *session.Session) (*AuthInfo, error) {
	raw, ok := sess.GetString(sessionKey)
	if !ok || raw == "" {
		return nil, ErrNoSession
	}

	var info AuthInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	if info.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &info, nil
}

// Auth reads the AuthInfo of the request from storage.
func Auth(ctx context.Context, r *http.Request, storage session.Storage) (*AuthInfo, error) {
	if storage == nil {
		return nil, ErrNotConfigured
	}
	sess, err := storage.GetSession(ctx, r)
	if err != nil {
		return nil, err
	}
	return AuthFromSession(sess)
}

// RefreshOptions configure RefreshAuth.
type RefreshOptions struct {
	// OrganizationID switches the session to this organization when set.
	OrganizationID string
	IPAddress      string
	UserAgent      string
	Config         ConfigSource
}

// RefreshAuth trades info.RefreshToken for a new token pair. The caller
// stores the result, the old refresh token is spent.
func RefreshAuth(ctx context.Context, info *AuthInfo, opts RefreshOptions) (*AuthInfo, error) {
	cfg, err := ResolveConfiguration(opts.Config)
	if err != nil {
		return nil, err
	}
	client, err := NewWorkOS(cfg)
	if err != nil {
		return nil, err
	}
	clientID, err := cfg.String(KeyClientID)
	if err != nil {
		return nil, err
	}
	return refreshAuth(ctx, client, clientID, info, opts)
}

func refreshAuth(ctx context.Context, client *workos.Client, clientID string, info *AuthInfo, opts RefreshOptions) (*AuthInfo, error) {
	if info == nil || info.RefreshToken == "" {
		return nil, ErrNoSession
	}

	resp, err := client.UserManagement().AuthenticateWithRefreshToken(ctx, workos.AuthenticateWithRefreshTokenOptions{
		ClientID:       clientID,
		RefreshToken:   info.RefreshToken,
		OrganizationID: opts.OrganizationID,
		IPAddress:      opts.IPAddress,
		UserAgent:      opts.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	next := newAuthInfo(resp)
	if next.User.ID == "" {
		next.User = info.User
	}
	return next, nil
}

type authInfoContextKey struct{}

// WithAuthInfo returns a copy of ctx carrying info.
func WithAuthInfo(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoContextKey{}, info)
}

// AuthInfoFromContext returns the AuthInfo set by RequireAuth.
func AuthInfoFromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(authInfoContextKey{}).(*AuthInfo)
	return info, ok && info != nil
}

// IsNoSession reports whether err means the request is not signed in.
func IsNoSession(err error) bool {
	return errors.Is(err, ErrNoSession)
}
