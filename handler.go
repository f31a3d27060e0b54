package authkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authkit/pkg/clientip"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/workos"
)

// DefaultRefreshLeeway is how long before expiry an access token is refreshed.
const DefaultRefreshLeeway = 30 * time.Second

// Handler serves the sign-in flow:
//
//	GET  /sign-in              redirect to the hosted sign-in page
//	GET  /sign-up              redirect to the hosted sign-up page
//	GET  /callback             exchange the code, store the session, redirect back
//	POST /sign-out             destroy the session and end the hosted one
//	POST /switch-organization  re-issue the session for another organization
//
// Sign-in and sign-up accept a returnPathname query parameter. Sign-out is
// POST only so a cross-site link or image cannot end a session.
type Handler struct {
	config         *Configuration
	client         *workos.Client
	storage        *SessionStorageManager
	logger         *slog.Logger
	returnPathname string
	signOutURL     string
	refreshLeeway  time.Duration
	now            func() time.Time
	router         chi.Router
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithReturnPathname sets where the callback redirects when the state carries
// no return path. Defaults to "/".
func WithReturnPathname(p string) HandlerOption {
	return func(h *Handler) {
		if p != "" {
			h.returnPathname = p
		}
	}
}

// WithSignOutRedirect sets where sign-out redirects. Defaults to "/".
func WithSignOutRedirect(u string) HandlerOption {
	return func(h *Handler) {
		if u != "" {
			h.signOutURL = u
		}
	}
}

// WithRefreshLeeway sets how long before expiry Auth refreshes an access token.
func WithRefreshLeeway(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d >= 0 {
			h.refreshLeeway = d
		}
	}
}

// WithSessionStorageManager replaces DefaultSessionStorageManager.
func WithSessionStorageManager(m *SessionStorageManager) HandlerOption {
	return func(h *Handler) {
		if m != nil {
			h.storage = m
		}
	}
}

// NewHandler creates a Handler. Session storage must be configured on the
// manager before the callback is served.
func NewHandler(src ConfigSource, opts ...HandlerOption) (*Handler, error) {
	cfg, err := ResolveConfiguration(src)
	if err != nil {
		return nil, err
	}
	client, err := NewWorkOS(cfg)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		config:         cfg,
		client:         client,
		storage:        DefaultSessionStorageManager(),
		logger:         logger.Discard(),
		returnPathname: "/",
		signOutURL:     "/",
		refreshLeeway:  DefaultRefreshLeeway,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("authkit"))

	r := chi.NewRouter()
	r.Get("/sign-in", h.signIn)
	r.Get("/sign-up", h.signUp)
	r.Get("/callback", h.callback)
	r.Post("/sign-out", h.signOut)
	r.Post("/switch-organization", h.switchOrganization)
	h.router = r

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	h.redirectToAuthorization(w, r, ScreenHintSignIn)
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	h.redirectToAuthorization(w, r, ScreenHintSignUp)
}

func (h *Handler) redirectToAuthorization(w http.ResponseWriter, r *http.Request, hint ScreenHint) {
	target, err := GetAuthorizationURL(AuthorizationURLOptions{
		ReturnPathname: safeReturnPathname(r.URL.Query().Get("returnPathname")),
		ScreenHint:     hint,
		OrganizationID: r.URL.Query().Get("organizationId"),
		LoginHint:      r.URL.Query().Get("loginHint"),
		Config:         h.config,
	})
	if err != nil {
		h.fail(w, r, "build authorization url", err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		h.logger.WarnContext(ctx, "authorization denied",
			slog.String("code", errCode),
			slog.String("description", q.Get("error_description")),
		)
		http.Error(w, "Authentication failed", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	clientID, err := h.config.String(KeyClientID)
	if err != nil {
		h.fail(w, r, "read client id", err)
		return
	}

	ip := requestIP(r)

	resp, err := h.client.UserManagement().AuthenticateWithCode(ctx, workos.AuthenticateWithCodeOptions{
		ClientID:  clientID,
		Code:      code,
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.fail(w, r, "authenticate with code", err)
		return
	}

	storage, err := h.storage.GetSessionStorage(ctx)
	if err != nil {
		h.fail(w, r, "get session storage", err)
		return
	}
	sess, err := storage.GetSession(ctx, r)
	if err != nil {
		h.fail(w, r, "read session", err)
		return
	}
	if err := session.Regenerate(ctx, storage.Storage, sess); err != nil {
		h.fail(w, r, "regenerate session", err)
		return
	}
	info := newAuthInfo(resp)
	if err := SaveAuth(sess, info); err != nil {
		h.fail(w, r, "save auth", err)
		return
	}
	if err := storage.CommitSession(ctx, w, sess); err != nil {
		h.fail(w, r, "commit session", err)
		return
	}

	target := h.returnPathname
	if raw := q.Get("state"); raw != "" {
		if st, err := DecodeState(raw); err == nil && safeReturnPathname(st.ReturnPathname) != "" {
			target = st.ReturnPathname
		}
	}

	h.logger.InfoContext(ctx, "signed in",
		logger.UserID(info.User.ID),
		logger.OrganizationID(info.OrganizationID),
		logger.ClientIP(ip),
	)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storage, err := h.storage.GetSessionStorage(ctx)
	if err != nil {
		h.fail(w, r, "get session storage", err)
		return
	}
	sess, err := storage.GetSession(ctx, r)
	if err != nil {
		h.fail(w, r, "read session", err)
		return
	}

	target := h.signOutURL
	if info, err := AuthFromSession(sess); err == nil {
		if claims, err := info.Claims(); err == nil && claims.SessionID != "" {
			target, err = h.client.UserManagement().GetLogoutURL(claims.SessionID, h.absoluteURL(h.signOutURL))
			if err != nil {
				h.fail(w, r, "build logout url", err)
				return
			}
		}
	}

	if err := storage.DestroySession(ctx, w, sess); err != nil {
		h.fail(w, r, "destroy session", err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) switchOrganization(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	orgID := r.PostForm.Get("organizationId")
	if orgID == "" {
		http.Error(w, "Missing organization", http.StatusBadRequest)
		return
	}
	returnTo := safeReturnPathname(r.PostForm.Get("returnPathname"))
	if returnTo == "" {
		returnTo = h.returnPathname
	}

	_, err := h.SwitchToOrganization(w, r, orgID)
	switch {
	case err == nil:
		http.Redirect(w, r, returnTo, http.StatusFound)
	case errors.Is(err, ErrNoSession):
		h.redirectToSignIn(w, r, AuthorizationURLOptions{ReturnPathname: returnTo})
	case requiresInteractiveLogin(err):
		h.redirectToSignIn(w, r, AuthorizationURLOptions{ReturnPathname: returnTo, OrganizationID: orgID})
	default:
		h.fail(w, r, "switch organization", err)
	}
}

// Auth returns the AuthInfo of r. An access token that expires within the
// refresh leeway is refreshed and the session committed to w. A rejected
// refresh destroys the session and returns ErrNoSession.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) (*AuthInfo, error) {
	ctx := r.Context()

	storage, err := h.storage.GetSessionStorage(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := storage.GetSession(ctx, r)
	if err != nil {
		return nil, err
	}
	info, err := AuthFromSession(sess)
	if err != nil {
		return nil, err
	}
	if !info.expiresWithin(h.refreshLeeway, h.now()) {
		return info, nil
	}

	refreshed, err := h.refresh(ctx, r, info, "")
	if err != nil {
		if !errors.Is(err, workos.ErrAuthentication) && !errors.Is(err, ErrNoSession) {
			return nil, err
		}
		h.logger.WarnContext(ctx, "session refresh rejected",
			logger.UserID(info.User.ID),
			logger.Error(err),
		)
		if err := storage.DestroySession(ctx, w, sess); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	if err := h.save(ctx, w, storage, sess, refreshed); err != nil {
		return nil, err
	}
	h.logger.DebugContext(ctx, "session refreshed", logger.UserID(refreshed.User.ID))
	return refreshed, nil
}

// SwitchToOrganization re-issues the signed-in session of r for
// organizationID and commits it to w. When the organization needs an
// interactive login the error carries the API code, e.g. "sso_required".
func (h *Handler) SwitchToOrganization(w http.ResponseWriter, r *http.Request, organizationID string) (*AuthInfo, error) {
	if organizationID == "" {
		return nil, fmt.Errorf("%w: organization id is required", ErrValidation)
	}
	ctx := r.Context()

	storage, err := h.storage.GetSessionStorage(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := storage.GetSession(ctx, r)
	if err != nil {
		return nil, err
	}
	info, err := AuthFromSession(sess)
	if err != nil {
		return nil, err
	}

	switched, err := h.refresh(ctx, r, info, organizationID)
	if err != nil {
		return nil, err
	}
	if err := h.save(ctx, w, storage, sess, switched); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "switched organization",
		logger.UserID(switched.User.ID),
		logger.OrganizationID(switched.OrganizationID),
	)
	return switched, nil
}

func (h *Handler) refresh(ctx context.Context, r *http.Request, info *AuthInfo, organizationID string) (*AuthInfo, error) {
	clientID, err := h.config.String(KeyClientID)
	if err != nil {
		return nil, err
	}
	return refreshAuth(ctx, h.client, clientID, info, RefreshOptions{
		OrganizationID: organizationID,
		IPAddress:      requestIP(r),
		UserAgent:      r.UserAgent(),
	})
}

func (h *Handler) save(ctx context.Context, w http.ResponseWriter, storage session.Storage, sess *session.Session, info *AuthInfo) error {
	if err := SaveAuth(sess, info); err != nil {
		return err
	}
	return storage.CommitSession(ctx, w, sess)
}

func (h *Handler) redirectToSignIn(w http.ResponseWriter, r *http.Request, opts AuthorizationURLOptions) {
	opts.Config = h.config
	target, err := GetSignInURL(opts)
	if err != nil {
		h.fail(w, r, "build authorization url", err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// absoluteURL resolves a relative redirect against the origin of the
// configured redirect URI. It returns "" when no absolute URL can be built.
func (h *Handler) absoluteURL(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	redirectURI, err := h.config.String(KeyRedirectURI)
	if err != nil {
		return ""
	}
	base, err := url.Parse(redirectURI)
	if err != nil || !base.IsAbs() {
		return ""
	}
	return base.ResolveReference(u).String()
}

// RequireAuth redirects anonymous requests to sign-in, carrying the
// requested path, and puts AuthInfo into the context otherwise.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := h.Auth(w, r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithAuthInfo(r.Context(), info)))
		case errors.Is(err, ErrNoSession):
			h.redirectToSignIn(w, r, AuthorizationURLOptions{
				ReturnPathname: safeReturnPathname(r.URL.RequestURI()),
			})
		default:
			h.fail(w, r, "read auth", err)
		}
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "authkit request failed",
		slog.String("op", op),
		logger.Path(r.URL.Path),
		logger.Error(err),
	)
	http.Error(w, "Something went wrong", http.StatusInternalServerError)
}

// safeReturnPathname keeps only same-origin absolute paths.
func safeReturnPathname(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	return p
}

func requestIP(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.FromRequest(r)
}

// requiresInteractiveLogin reports whether the API asks the user to sign in
// again, for example into an organization that enforces SSO.
func requiresInteractiveLogin(err error) bool {
	switch workos.AuthenticationErrorCode(err) {
	case "sso_required", "mfa_enrollment":
		return true
	}
	return false
}
