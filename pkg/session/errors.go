package session

import "errors"

var (
	// ErrSessionNotFound indicates the backend holds no data for a session ID
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrNilSession is returned when committing or destroying a nil session
	ErrNilSession = errors.New("session.nil")

	// ErrNoCookieName indicates the cookie definition has no name
	ErrNoCookieName = errors.New("session.no_cookie_name")

	// ErrEncoding indicates session data could not be (de)serialized
	ErrEncoding = errors.New("session.encoding_failed")
)
