// Package authkit integrates a Go web application with WorkOS AuthKit.
//
// A Configuration resolves settings from explicit values, then WORKOS_*
// environment variables, then built-in defaults:
//
//	cfg, err := authkit.NewConfiguration(authkit.Settings{
//	    RedirectURI: "https://app.example.com/auth/callback",
//	})
//
// Anything that needs configuration accepts a ConfigSource, either a
// *Configuration or plain Settings.
//
// Session storage is configured once per process. The first call to
// ConfigureSessionStorage builds it; later and concurrent calls share that
// result and ignore their own options:
//
//	storage, err := authkit.ConfigureSessionStorage(ctx, authkit.DefaultStorageOptions{Config: cfg})
//
// GetAuthorizationURL, GetSignInURL and GetSignUpURL build links to the
// hosted login page. Handler serves sign-in, callback, sign-out and
// organization switch routes. RequireAuth protects application routes and
// refreshes access tokens that are about to expire.
package authkit
