package jwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Header is the JOSE header of a token.
type Header struct {
	Type      string `json:"typ,omitempty"`
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid,omitempty"`
}

// StandardClaims are the registered claims of RFC 7519 this module reads.
// Temporal claims are Unix timestamps; zero means unset.
type StandardClaims struct {
	ID        string `json:"jti,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// ExpiresWithin reports whether the token is expired at now+leeway.
// A token without exp never expires.
func (c StandardClaims) ExpiresWithin(leeway time.Duration, now time.Time) bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return !now.Add(leeway).Before(time.Unix(c.ExpiresAt, 0))
}

// AccessTokenClaims are the claims of a user management access token.
type AccessTokenClaims struct {
	StandardClaims
	SessionID      string   `json:"sid"`
	OrganizationID string   `json:"org_id,omitempty"`
	Role           string   `json:"role,omitempty"`
	Permissions    []string `json:"permissions,omitempty"`
}

// Decode unmarshals the payload of token into claims. The signature is not
// verified. An "alg" of "none" is rejected.
func Decode(token string, claims any) error {
	if claims == nil {
		return ErrMissingClaims
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return ErrInvalidToken
	}

	headerJSON, err := decodeSegment(parts[0])
	if err != nil {
		return fmt.Errorf("%w: header: %w", ErrInvalidToken, err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return fmt.Errorf("%w: header: %w", ErrInvalidToken, err)
	}
	if header.Algorithm == "" || strings.EqualFold(header.Algorithm, "none") {
		return fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidToken, header.Algorithm)
	}

	claimsJSON, err := decodeSegment(parts[1])
	if err != nil {
		return fmt.Errorf("%w: claims: %w", ErrInvalidToken, err)
	}
	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidClaims, err)
	}
	return nil
}

// decodeSegment accepts base64url with or without padding.
func decodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
