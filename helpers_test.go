package authkit_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit"
)

const testCookiePassword = "kR3b8zQ1vX9mN2pL7wT4yH6jF0cA5sDe"

func testSettings() authkit.Settings {
	return authkit.Settings{
		ClientID:       "client_123",
		APIKey:         "sk_test_123",
		RedirectURI:    "http://localhost:3000/callback",
		CookiePassword: testCookiePassword,
	}
}

// testConfig builds a configuration isolated from the process environment.
func testConfig(t *testing.T, mutate ...func(*authkit.Settings)) *authkit.Configuration {
	t.Helper()

	s := testSettings()
	for _, m := range mutate {
		m(&s)
	}

	cfg, err := authkit.NewConfiguration(s, authkit.WithoutEnvironment())
	require.NoError(t, err)
	return cfg
}

// testAccessToken builds an RS256-shaped access token carrying claims. The
// signature is a placeholder.
func testAccessToken(t *testing.T, sid string, expiresIn time.Duration) string {
	t.Helper()

	enc := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}

	claims := map[string]any{
		"sub": "user_1",
		"exp": time.Now().Add(expiresIn).Unix(),
		"iat": time.Now().Unix(),
	}
	if sid != "" {
		claims["sid"] = sid
	}
	return enc(map[string]string{"alg": "RS256", "typ": "JWT"}) + "." + enc(claims) + ".c2lnbmF0dXJl"
}
