package session

import (
	"net/http"

	"github.com/dmitrymomot/authkit/pkg/cookie"
)

// Cookie describes the cookie a Storage issues.
type Cookie struct {
	Name     string
	Path     string
	Domain   string
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
	// MaxAge is the cookie lifetime in seconds. Zero means a browser-session cookie.
	MaxAge int
	// Secrets sign or encrypt the cookie value. The first one writes,
	// all are accepted when reading.
	Secrets []string
}

func (c Cookie) manager() (*cookie.Manager, error) {
	if c.Name == "" {
		return nil, ErrNoCookieName
	}

	return cookie.New(c.Secrets, cookie.WithAttributes(cookie.Options{
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   c.MaxAge,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		SameSite: c.SameSite,
	}))
}
