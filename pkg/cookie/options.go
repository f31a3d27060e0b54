package cookie

import (
	"net/http"
	"time"
)

// Options are the attributes of a written cookie. New starts from Path "/",
// HttpOnly and SameSite Lax; everything else is off until an Option sets it.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option overrides attributes for the whole Manager (passed to New) or for a
// single Set or Delete call.
type Option func(*Options)

// WithAttributes replaces every attribute at once. An empty Path keeps the
// current one.
func WithAttributes(attrs Options) Option {
	return func(o *Options) {
		path := o.Path
		*o = attrs
		if o.Path == "" {
			o.Path = path
		}
	}
}

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

// WithDomain scopes the cookie to domain and its subdomains.
func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

// WithMaxAge sets the lifetime in seconds. Zero keeps the cookie until the
// browser closes.
func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

// with returns o with opts applied. o itself is a value and stays unchanged.
func (o Options) with(opts []Option) Options {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// httpCookie renders name and value with these attributes. A negative MaxAge
// expires the cookie.
func (o Options) httpCookie(name, value string) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
	switch {
	case o.MaxAge > 0:
		c.Expires = time.Now().Add(time.Duration(o.MaxAge) * time.Second)
	case o.MaxAge < 0:
		c.Expires = time.Unix(0, 0)
	}
	return c
}
