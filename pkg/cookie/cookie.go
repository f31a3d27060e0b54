package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	minSecretLength = 32

	// MaxSize is the largest serialized cookie (name plus value) browsers are
	// guaranteed to keep.
	MaxSize = 4096

	signingInfo    = "authkit/cookie/sign"
	encryptionInfo = "authkit/cookie/encrypt"
)

// keySet holds the keys derived from one secret.
type keySet struct {
	sign []byte
	enc  []byte
}

// Manager reads and writes plain, signed and encrypted cookies.
// The first secret is used for writing, every secret is tried for reading.
type Manager struct {
	keys     []keySet
	defaults Options
}

func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	keys := make([]keySet, 0, len(secrets))
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}

		ks, err := deriveKeys(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, ks)
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		keys:     keys,
		defaults: defaults.with(opts),
	}, nil
}

// Defaults returns the options applied to every written cookie.
func (m *Manager) Defaults() Options {
	return m.defaults
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	if len(name)+len(value) > MaxSize {
		return fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrCookieTooLarge, name, len(name)+len(value), MaxSize)
	}

	http.SetCookie(w, m.defaults.with(opts).httpCookie(name, value))
	return nil
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie. Path and domain must match the ones used to set it.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := m.defaults.with(opts)
	options.MaxAge = -1
	http.SetCookie(w, options.httpCookie(name, ""))
}

func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	return m.Set(w, name, m.Sign(value), opts...)
}

func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	signed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Verify(signed)
}

func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	encrypted, err := m.Encrypt(value)
	if err != nil {
		return err
	}
	return m.Set(w, name, encrypted, opts...)
}

func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	encrypted, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Decrypt(encrypted)
}

// Sign returns value together with its HMAC-SHA256 signature.
func (m *Manager) Sign(value string) string {
	mac := hmac.New(sha256.New, m.keys[0].sign)
	mac.Write([]byte(value))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + signature
}

// Verify checks a value produced by Sign against every configured secret.
func (m *Manager) Verify(signed string) (string, error) {
	encodedValue, signature, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := base64.RawURLEncoding.DecodeString(encodedValue)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, ks := range m.keys {
		mac := hmac.New(sha256.New, ks.sign)
		mac.Write(value)
		expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

		if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1 {
			return string(value), nil
		}
	}

	return "", ErrInvalidSignature
}

// Encrypt seals value with AES-256-GCM. The nonce is prepended to the ciphertext.
func (m *Manager) Encrypt(value string) (string, error) {
	gcm, err := newGCM(m.keys[0].enc)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(value), nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a value produced by Encrypt, trying every configured secret.
func (m *Manager) Decrypt(encrypted string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, ks := range m.keys {
		gcm, err := newGCM(ks.enc)
		if err != nil {
			continue
		}
		if len(data) < gcm.NonceSize() {
			return "", ErrInvalidFormat
		}

		nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
		if plaintext, err := gcm.Open(nil, nonce, ciphertext, nil); err == nil {
			return string(plaintext), nil
		}
	}

	return "", ErrDecryptionFailed
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// deriveKeys expands a secret into independent signing and encryption keys.
func deriveKeys(secret string) (keySet, error) {
	sign := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(signingInfo)), sign); err != nil {
		return keySet{}, fmt.Errorf("derive signing key: %w", err)
	}

	enc := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(encryptionInfo)), enc); err != nil {
		return keySet{}, fmt.Errorf("derive encryption key: %w", err)
	}

	return keySet{sign: sign, enc: enc}, nil
}
