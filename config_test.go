package authkit_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit"
)

func TestConfigurationPrecedence(t *testing.T) {
	t.Parallel()

	environ := map[string]string{
		"WORKOS_COOKIE_NAME": "from-env",
		"WORKOS_API_PORT":    "8443",
		"WORKOS_API_HTTPS":   "false",
	}

	t.Run("explicit wins over environment", func(t *testing.T) {
		t.Parallel()
		cfg, err := authkit.NewConfiguration(authkit.Settings{CookieName: "explicit"}, authkit.WithEnvironment(environ))
		require.NoError(t, err)

		name, err := cfg.String(authkit.KeyCookieName)
		require.NoError(t, err)
		assert.Equal(t, "explicit", name)
	})

	t.Run("environment wins over default", func(t *testing.T) {
		t.Parallel()
		cfg, err := authkit.NewConfiguration(authkit.Settings{}, authkit.WithEnvironment(environ))
		require.NoError(t, err)

		name, err := cfg.String(authkit.KeyCookieName)
		require.NoError(t, err)
		assert.Equal(t, "from-env", name)

		port, err := cfg.Int(authkit.KeyAPIPort)
		require.NoError(t, err)
		assert.Equal(t, 8443, port)

		https, err := cfg.Bool(authkit.KeyAPIHTTPS)
		require.NoError(t, err)
		assert.False(t, https)
	})

	t.Run("defaults apply when nothing is set", func(t *testing.T) {
		t.Parallel()
		cfg, err := authkit.NewConfiguration(authkit.Settings{}, authkit.WithEnvironment(map[string]string{}))
		require.NoError(t, err)

		name, _ := cfg.String(authkit.KeyCookieName)
		assert.Equal(t, authkit.DefaultCookieName, name)

		https, _ := cfg.Bool(authkit.KeyAPIHTTPS)
		assert.True(t, https)

		host, _ := cfg.String(authkit.KeyAPIHostname)
		assert.Equal(t, authkit.DefaultAPIHostname, host)

		maxAge, _ := cfg.Int(authkit.KeyCookieMaxAge)
		assert.Equal(t, 34560000, maxAge)
	})

	t.Run("explicit false is not replaced by default", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t, func(s *authkit.Settings) { s.APIHTTPS = authkit.Ptr(false) })

		https, err := cfg.Bool(authkit.KeyAPIHTTPS)
		require.NoError(t, err)
		assert.False(t, https)
	})
}

func TestConfigurationValue(t *testing.T) {
	t.Parallel()

	t.Run("missing required key", func(t *testing.T) {
		t.Parallel()
		cfg, err := authkit.NewConfiguration(authkit.Settings{}, authkit.WithoutEnvironment())
		require.NoError(t, err)

		for _, key := range []authkit.Key{authkit.KeyClientID, authkit.KeyAPIKey, authkit.KeyRedirectURI, authkit.KeyCookiePassword} {
			_, err := cfg.Value(key)
			require.ErrorIs(t, err, authkit.ErrMissingConfiguration)
			assert.Contains(t, err.Error(), string(key))
		}
	})

	t.Run("unset optional keys are nil", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)

		v, err := cfg.Value(authkit.KeyAPIPort)
		require.NoError(t, err)
		assert.Nil(t, v)

		domain, err := cfg.String(authkit.KeyCookieDomain)
		require.NoError(t, err)
		assert.Empty(t, domain)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()
		_, err := testConfig(t).Value("nope")
		assert.ErrorIs(t, err, authkit.ErrUnknownKey)
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()
		_, err := authkit.Get[int](testConfig(t), authkit.KeyClientID)
		assert.ErrorIs(t, err, authkit.ErrInvalidValueType)
	})
}

func TestConfigurationCookiePassword(t *testing.T) {
	t.Parallel()

	t.Run("31 characters rejected", func(t *testing.T) {
		t.Parallel()
		_, err := authkit.NewConfiguration(authkit.Settings{CookiePassword: testCookiePassword[:31]}, authkit.WithoutEnvironment())
		require.ErrorIs(t, err, authkit.ErrCookiePasswordTooShort)
		assert.ErrorIs(t, err, authkit.ErrValidation)
	})

	t.Run("32 characters accepted", func(t *testing.T) {
		t.Parallel()
		_, err := authkit.NewConfiguration(authkit.Settings{CookiePassword: testCookiePassword[:32]}, authkit.WithoutEnvironment())
		assert.NoError(t, err)
	})

	t.Run("absent password passes configure", func(t *testing.T) {
		t.Parallel()
		_, err := authkit.NewConfiguration(authkit.Settings{ClientID: "c"}, authkit.WithoutEnvironment())
		assert.NoError(t, err)
	})

	t.Run("short password from environment rejected", func(t *testing.T) {
		t.Parallel()
		_, err := authkit.NewConfiguration(authkit.Settings{}, authkit.WithEnvironment(map[string]string{
			"WORKOS_COOKIE_PASSWORD": "short",
		}))
		assert.ErrorIs(t, err, authkit.ErrCookiePasswordTooShort)
	})

	t.Run("failed merge is kept", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)

		err := cfg.Configure(authkit.Settings{CookiePassword: "short", CookieName: "after"})
		require.ErrorIs(t, err, authkit.ErrCookiePasswordTooShort)

		pw, _ := cfg.String(authkit.KeyCookiePassword)
		assert.Equal(t, "short", pw)
		name, _ := cfg.String(authkit.KeyCookieName)
		assert.Equal(t, "after", name)
	})
}

func TestConfigurationConfigureMerges(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, cfg.Configure(authkit.Settings{CookieName: "second", APIPort: authkit.Ptr(3000)}))

	name, _ := cfg.String(authkit.KeyCookieName)
	assert.Equal(t, "second", name)
	port, _ := cfg.Int(authkit.KeyAPIPort)
	assert.Equal(t, 3000, port)

	clientID, _ := cfg.String(authkit.KeyClientID)
	assert.Equal(t, "client_123", clientID, "unrelated keys survive the merge")
}

func TestConfigurationInvalidEnvironment(t *testing.T) {
	t.Parallel()

	_, err := authkit.NewConfiguration(authkit.Settings{}, authkit.WithEnvironment(map[string]string{
		"WORKOS_API_PORT": "not-a-number",
	}))
	assert.ErrorIs(t, err, authkit.ErrParsingEnvironment)
}

func TestConfigurationEnvironmentSnapshot(t *testing.T) {
	t.Setenv("WORKOS_CLIENT_ID", "client_env")

	cfg, err := authkit.NewConfiguration(authkit.Settings{})
	require.NoError(t, err)

	t.Setenv("WORKOS_CLIENT_ID", "client_changed")

	clientID, err := cfg.String(authkit.KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, "client_env", clientID)
}

func TestResolveConfiguration(t *testing.T) {
	t.Parallel()

	t.Run("configuration is returned as is", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)

		got, err := authkit.ResolveConfiguration(cfg)
		require.NoError(t, err)
		assert.Same(t, cfg, got)
	})

	t.Run("settings build a new configuration each time", func(t *testing.T) {
		t.Parallel()
		s := testSettings()

		a, err := authkit.ResolveConfiguration(s)
		require.NoError(t, err)
		b, err := authkit.ResolveConfiguration(s)
		require.NoError(t, err)
		assert.NotSame(t, a, b)

		clientID, _ := a.String(authkit.KeyClientID)
		assert.Equal(t, "client_123", clientID)
	})

	t.Run("nil builds a configuration", func(t *testing.T) {
		t.Parallel()
		cfg, err := authkit.ResolveConfiguration(nil)
		require.NoError(t, err)
		assert.NotNil(t, cfg)
	})

	t.Run("settings errors propagate", func(t *testing.T) {
		t.Parallel()
		_, err := authkit.ResolveConfiguration(authkit.Settings{CookiePassword: "short"})
		assert.ErrorIs(t, err, authkit.ErrValidation)
	})
}

func TestConfigurationConcurrentAccess(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = cfg.Configure(authkit.Settings{APIPort: authkit.Ptr(i)})
		}()
		go func() {
			defer wg.Done()
			_, _ = cfg.Int(authkit.KeyAPIPort)
		}()
	}
	wg.Wait()

	_, err := cfg.Int(authkit.KeyAPIPort)
	assert.NoError(t, err)
}
