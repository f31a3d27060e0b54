// Package cookie reads and writes HTTP cookies that are plain, signed or
// encrypted.
//
// A Manager is created from one or more secrets of at least 32 characters.
// Each secret is expanded with HKDF-SHA256 into an HMAC signing key and an
// AES-256-GCM key, so the same password never serves both purposes. The first
// secret writes, all secrets read, which allows rotating secrets without
// invalidating cookies already issued.
//
// # Usage
//
//	m, err := cookie.New([]string{os.Getenv("WORKOS_COOKIE_PASSWORD")},
//	    cookie.WithSecure(true),
//	    cookie.WithMaxAge(3600),
//	)
//	if err != nil {
//	    return err
//	}
//
//	_ = m.SetSigned(w, "sid", "abc")       // integrity only
//	_ = m.SetEncrypted(w, "data", "{...}") // integrity + privacy
//
//	v, err := m.GetEncrypted(r, "data")
//
// # Error Handling
//
//   - ErrNoSecret, ErrSecretTooShort – construction errors.
//   - ErrCookieNotFound – the request carries no such cookie.
//   - ErrInvalidFormat, ErrInvalidSignature, ErrDecryptionFailed – tampered
//     or foreign cookie values.
//   - ErrCookieTooLarge – the serialized cookie exceeds MaxSize.
package cookie
