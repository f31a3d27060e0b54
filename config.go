package authkit

import (
	"fmt"
	"maps"
	"sync"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
)

// Key names a configuration setting.
type Key string

const (
	KeyClientID       Key = "clientId"
	KeyAPIKey         Key = "apiKey"
	KeyRedirectURI    Key = "redirectUri"
	KeyCookiePassword Key = "cookiePassword"
	KeyCookieName     Key = "cookieName"
	KeyCookieDomain   Key = "cookieDomain"
	KeyCookieMaxAge   Key = "cookieMaxAge"
	KeyAPIHTTPS       Key = "apiHttps"
	KeyAPIHostname    Key = "apiHostname"
	KeyAPIPort        Key = "apiPort"
)

const (
	DefaultCookieName  = "wos-session"
	DefaultAPIHostname = "api.workos.com"
	// DefaultCookieMaxAge is 400 days, the longest lifetime browsers accept.
	// Access and refresh tokens limit the session, not the cookie.
	DefaultCookieMaxAge = 60 * 60 * 24 * 400

	MinCookiePasswordLength = 32
)

var (
	knownKeys = map[Key]bool{
		KeyClientID:       true,
		KeyAPIKey:         true,
		KeyRedirectURI:    true,
		KeyCookiePassword: true,
		KeyCookieName:     false,
		KeyCookieDomain:   false,
		KeyCookieMaxAge:   false,
		KeyAPIHTTPS:       false,
		KeyAPIHostname:    false,
		KeyAPIPort:        false,
	}

	defaultValues = map[Key]any{
		KeyCookieName:   DefaultCookieName,
		KeyAPIHTTPS:     true,
		KeyAPIHostname:  DefaultAPIHostname,
		KeyCookieMaxAge: DefaultCookieMaxAge,
	}
)

// Required reports whether reading an unset key is an error.
func (k Key) Required() bool {
	return knownKeys[k]
}

// Settings is a partial configuration. Empty strings and nil pointers are unset.
// The env tags name the environment variables read as fallback values.
type Settings struct {
	ClientID       string `env:"WORKOS_CLIENT_ID"`
	APIKey         string `env:"WORKOS_API_KEY"`
	RedirectURI    string `env:"WORKOS_REDIRECT_URI"`
	CookiePassword string `env:"WORKOS_COOKIE_PASSWORD"`
	CookieName     string `env:"WORKOS_COOKIE_NAME"`
	CookieDomain   string `env:"WORKOS_COOKIE_DOMAIN"`
	CookieMaxAge   *int   `env:"WORKOS_COOKIE_MAX_AGE"`
	APIHTTPS       *bool  `env:"WORKOS_API_HTTPS"`
	APIHostname    string `env:"WORKOS_API_HOSTNAME"`
	APIPort        *int   `env:"WORKOS_API_PORT"`
}

// values returns the set fields keyed by Key.
func (s Settings) values() map[Key]any {
	v := make(map[Key]any, len(knownKeys))
	for key, str := range map[Key]string{
		KeyClientID:       s.ClientID,
		KeyAPIKey:         s.APIKey,
		KeyRedirectURI:    s.RedirectURI,
		KeyCookiePassword: s.CookiePassword,
		KeyCookieName:     s.CookieName,
		KeyCookieDomain:   s.CookieDomain,
		KeyAPIHostname:    s.APIHostname,
	} {
		if str != "" {
			v[key] = str
		}
	}
	if s.CookieMaxAge != nil {
		v[KeyCookieMaxAge] = *s.CookieMaxAge
	}
	if s.APIHTTPS != nil {
		v[KeyAPIHTTPS] = *s.APIHTTPS
	}
	if s.APIPort != nil {
		v[KeyAPIPort] = *s.APIPort
	}
	return v
}

// Ptr returns a pointer to v, handy for the optional Settings fields.
func Ptr[T any](v T) *T {
	return &v
}

// ConfigSource is accepted wherever a configuration is needed: either a ready
// *Configuration, used as is, or Settings, from which a new one is built.
type ConfigSource interface {
	resolveConfiguration() (*Configuration, error)
}

// ResolveConfiguration normalizes src into a *Configuration.
// A *Configuration is returned unchanged; Settings and nil build a new one.
func ResolveConfiguration(src ConfigSource) (*Configuration, error) {
	if src == nil {
		return NewConfiguration(Settings{})
	}
	return src.resolveConfiguration()
}

func (s Settings) resolveConfiguration() (*Configuration, error) {
	return NewConfiguration(s)
}

// Configuration resolves settings on read with the precedence
// explicit value, environment value, built-in default.
type Configuration struct {
	mu       sync.RWMutex
	explicit map[Key]any
	env      map[Key]any
}

type configOptions struct {
	useEnv  bool
	environ map[string]string
}

// ConfigOption configures NewConfiguration.
type ConfigOption func(*configOptions)

// WithEnvironment reads fallback values from environ instead of the process environment.
func WithEnvironment(environ map[string]string) ConfigOption {
	return func(o *configOptions) {
		o.useEnv = true
		o.environ = environ
	}
}

// WithoutEnvironment disables environment fallback values.
func WithoutEnvironment() ConfigOption {
	return func(o *configOptions) {
		o.useEnv = false
		o.environ = nil
	}
}

// NewConfiguration creates a configuration from settings. Environment values
// are captured once, here.
func NewConfiguration(settings Settings, opts ...ConfigOption) (*Configuration, error) {
	o := configOptions{useEnv: true}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Configuration{
		explicit: make(map[Key]any),
		env:      make(map[Key]any),
	}

	if o.useEnv {
		// A nil Environment makes env read os.Environ.
		fromEnv, err := env.ParseAsWithOptions[Settings](env.Options{Environment: o.environ})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParsingEnvironment, err)
		}
		c.env = fromEnv.values()
	}

	if err := c.Configure(settings); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Configuration) resolveConfiguration() (*Configuration, error) {
	if c == nil {
		return NewConfiguration(Settings{})
	}
	return c, nil
}

// Configure merges the set fields of s over the current explicit values and
// validates the cookie password. On a validation error the merged values are
// kept; the configuration must not be used afterwards.
func (c *Configuration) Configure(s Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	maps.Copy(c.explicit, s.values())

	if pw, ok := c.lookup(KeyCookiePassword).(string); ok && pw != "" && utf8.RuneCountInString(pw) < MinCookiePasswordLength {
		return ErrCookiePasswordTooShort
	}

	return nil
}

// Value returns the resolved value of key. Unset required keys fail with
// ErrMissingConfiguration; unset optional keys return nil.
func (c *Configuration) Value(key Key) (any, error) {
	required, known := knownKeys[key]
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	c.mu.RLock()
	v := c.lookup(key)
	c.mu.RUnlock()

	if v == nil && required {
		return nil, fmt.Errorf("%w for %s", ErrMissingConfiguration, key)
	}
	return v, nil
}

// lookup applies precedence. Callers hold c.mu.
func (c *Configuration) lookup(key Key) any {
	if v, ok := c.explicit[key]; ok {
		return v
	}
	if v, ok := c.env[key]; ok {
		return v
	}
	return defaultValues[key]
}

// Get returns the value of key as T. Unset optional keys yield the zero value.
func Get[T any](c *Configuration, key Key) (T, error) {
	var zero T

	v, err := c.Value(key)
	if err != nil || v == nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrInvalidValueType, key, v)
	}
	return t, nil
}

func (c *Configuration) String(key Key) (string, error) {
	return Get[string](c, key)
}

func (c *Configuration) Bool(key Key) (bool, error) {
	return Get[bool](c, key)
}

func (c *Configuration) Int(key Key) (int, error) {
	return Get[int](c, key)
}
