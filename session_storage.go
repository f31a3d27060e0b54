package authkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/authkit/pkg/async"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// SessionStorage is the configured storage together with the name of the
// cookie it reads and writes.
type SessionStorage struct {
	session.Storage
	CookieName string
}

// SessionStorageOptions is one of DefaultStorageOptions or CustomStorageOptions.
type SessionStorageOptions interface {
	sessionStorageOptions()
}

// DefaultStorageOptions selects the built-in encrypted cookie storage.
type DefaultStorageOptions struct {
	// CookieName overrides the configured cookieName.
	CookieName string
	// Config defaults to a configuration built from the environment.
	Config ConfigSource
}

// CustomStorageOptions installs a caller-provided storage. Both fields are required.
type CustomStorageOptions struct {
	Storage    session.Storage
	CookieName string
	Config     ConfigSource
}

func (DefaultStorageOptions) sessionStorageOptions() {}
func (CustomStorageOptions) sessionStorageOptions()  {}

// SessionStorageManager builds the session storage exactly once.
// The first Configure call wins; later and concurrent calls receive its
// result, error included, and their options are ignored.
type SessionStorageManager struct {
	once   async.Once[SessionStorage]
	logger *slog.Logger
}

// ManagerOption configures a SessionStorageManager.
type ManagerOption func(*SessionStorageManager)

// WithManagerLogger sets the logger. Output is discarded by default.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *SessionStorageManager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewSessionStorageManager(opts ...ManagerOption) *SessionStorageManager {
	m := &SessionStorageManager{
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configure builds the storage from opts on the first call and returns the
// shared result on every call. A nil opts selects DefaultStorageOptions{}.
func (m *SessionStorageManager) Configure(ctx context.Context, opts SessionStorageOptions) (SessionStorage, error) {
	f, first := m.once.Do(func() (SessionStorage, error) {
		return m.build(opts)
	})
	if !first {
		m.logger.DebugContext(ctx, "session storage already configured, options ignored")
	}
	return f.AwaitContext(ctx)
}

// GetSessionStorage waits for a configuration started by Configure.
// Returns ErrNotConfigured if Configure was never called.
func (m *SessionStorageManager) GetSessionStorage(ctx context.Context) (SessionStorage, error) {
	s, err := m.once.Get(ctx)
	if errors.Is(err, async.ErrNotReady) {
		return SessionStorage{}, ErrNotConfigured
	}
	return s, err
}

// Configured reports whether Configure has been called.
func (m *SessionStorageManager) Configured() bool {
	return m.once.Started()
}

func (m *SessionStorageManager) build(opts SessionStorageOptions) (SessionStorage, error) {
	switch o := opts.(type) {
	case nil:
		return m.buildDefault(DefaultStorageOptions{})
	case DefaultStorageOptions:
		return m.buildDefault(o)
	case *DefaultStorageOptions:
		if o == nil {
			return m.buildDefault(DefaultStorageOptions{})
		}
		return m.buildDefault(*o)
	case CustomStorageOptions:
		return m.buildCustom(o)
	case *CustomStorageOptions:
		if o == nil {
			return SessionStorage{}, fmt.Errorf("%w: custom storage options are nil", ErrValidation)
		}
		return m.buildCustom(*o)
	default:
		return SessionStorage{}, fmt.Errorf("%w: unsupported session storage options %T", ErrValidation, opts)
	}
}

func (m *SessionStorageManager) buildDefault(o DefaultStorageOptions) (SessionStorage, error) {
	def, err := DefaultCookie(o.Config, o.CookieName)
	if err != nil {
		return SessionStorage{}, err
	}

	storage, err := session.NewCookieStorage(def)
	if err != nil {
		return SessionStorage{}, err
	}

	m.logger.Info("session storage configured",
		slog.String("storage", "cookie"),
		slog.String("cookie_name", def.Name),
		slog.Bool("secure", def.Secure),
	)

	return SessionStorage{Storage: storage, CookieName: def.Name}, nil
}

func (m *SessionStorageManager) buildCustom(o CustomStorageOptions) (SessionStorage, error) {
	if o.Storage == nil {
		return SessionStorage{}, fmt.Errorf("%w: custom session storage is nil", ErrValidation)
	}
	if o.CookieName == "" {
		return SessionStorage{}, fmt.Errorf("%w: custom session storage requires a cookie name", ErrValidation)
	}
	if _, err := ResolveConfiguration(o.Config); err != nil {
		return SessionStorage{}, err
	}

	m.logger.Info("session storage configured",
		logger.Component(fmt.Sprintf("%T", o.Storage)),
		slog.String("cookie_name", o.CookieName),
	)

	return SessionStorage{Storage: o.Storage, CookieName: o.CookieName}, nil
}

// DefaultCookie returns the session cookie attributes derived from the
// configuration: path "/", HttpOnly, SameSite=Lax, Secure when redirectUri
// is https, cookieMaxAge and cookieDomain, signed with cookiePassword.
// An empty cookieName selects the configured one.
func DefaultCookie(src ConfigSource, cookieName string) (session.Cookie, error) {
	cfg, err := ResolveConfiguration(src)
	if err != nil {
		return session.Cookie{}, err
	}

	if cookieName == "" {
		if cookieName, err = cfg.String(KeyCookieName); err != nil {
			return session.Cookie{}, err
		}
	}

	redirectURI, err := cfg.String(KeyRedirectURI)
	if err != nil {
		return session.Cookie{}, err
	}
	u, err := url.Parse(redirectURI)
	if err != nil {
		return session.Cookie{}, fmt.Errorf("%w: redirectUri: %w", ErrValidation, err)
	}

	password, err := cfg.String(KeyCookiePassword)
	if err != nil {
		return session.Cookie{}, err
	}
	maxAge, err := cfg.Int(KeyCookieMaxAge)
	if err != nil {
		return session.Cookie{}, err
	}
	domain, err := cfg.String(KeyCookieDomain)
	if err != nil {
		return session.Cookie{}, err
	}

	return session.Cookie{
		Name:     cookieName,
		Path:     "/",
		Domain:   domain,
		HTTPOnly: true,
		Secure:   u.Scheme == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Secrets:  []string{password},
	}, nil
}

var defaultManager = NewSessionStorageManager()

// DefaultSessionStorageManager returns the process-wide manager used by
// ConfigureSessionStorage and GetSessionStorage.
func DefaultSessionStorageManager() *SessionStorageManager {
	return defaultManager
}

// ConfigureSessionStorage configures the process-wide session storage.
func ConfigureSessionStorage(ctx context.Context, opts SessionStorageOptions) (SessionStorage, error) {
	return defaultManager.Configure(ctx, opts)
}

// GetSessionStorage returns the process-wide session storage.
func GetSessionStorage(ctx context.Context) (SessionStorage, error) {
	return defaultManager.GetSessionStorage(ctx)
}
