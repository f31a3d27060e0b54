// Package session implements cookie-backed session storage for net/http
// handlers.
//
// A Storage loads a Session from the request, lets the handler read and
// modify it, and persists it again when CommitSession writes the response
// cookie. Two strategies are provided:
//
//   - CookieStorage keeps the entire session JSON-encoded and AES-GCM
//     encrypted inside the cookie. No server-side state is needed, but the
//     data must fit into a single cookie.
//   - IDStorage keeps only a signed session ID in the cookie and stores the
//     data in a Backend. MemoryBackend (process-local) and RedisBackend ship
//     with the package.
//
// The cookie itself is described by a Cookie value: name, path, domain,
// security flags, max-age and the secrets used for signing and encryption.
//
// # Usage
//
//	storage, err := session.NewCookieStorage(session.Cookie{
//	    Name:     "wos-session",
//	    HTTPOnly: true,
//	    Secure:   true,
//	    SameSite: http.SameSiteLaxMode,
//	    MaxAge:   3600,
//	    Secrets:  []string{password},
//	})
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    sess, _ := storage.GetSession(r.Context(), r)
//	    sess.Set("theme", "dark")
//	    _ = storage.CommitSession(r.Context(), w, sess)
//	}
//
// Redis-backed sessions:
//
//	storage, err := session.NewIDStorage(def, session.NewRedisBackend(client, ""))
//
// # Error Handling
//
//   - ErrNoCookieName    – the Cookie definition has no name
//   - ErrSessionNotFound – a Backend has no data for the ID
//   - ErrEncoding        – session data could not be JSON encoded/decoded
//   - cookie.ErrCookieTooLarge – CookieStorage data does not fit in a cookie
package session
