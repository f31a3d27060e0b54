// Package workos is a small client for the hosted authentication API.
//
// It covers the parts of the user management API a web integration needs to
// run the hosted login flow: building the authorization URL, exchanging the
// returned code for tokens and the user profile, and building the logout URL.
// URL assembly and the code exchange are delegated to golang.org/x/oauth2.
//
// # Usage
//
//	client, err := workos.New(apiKey, workos.Options{
//	    APIHostname: "api.workos.com",
//	    HTTPS:       true,
//	    AppInfo:     workos.AppInfo{Name: "my-app", Version: "1.0.0"},
//	})
//
//	url, err := client.UserManagement().GetAuthorizationURL(workos.AuthorizationURLOptions{
//	    Provider:    "authkit",
//	    ClientID:    clientID,
//	    RedirectURI: "https://example.com/callback",
//	})
//
//	auth, err := client.UserManagement().AuthenticateWithCode(ctx, workos.AuthenticateWithCodeOptions{
//	    ClientID: clientID,
//	    Code:     r.URL.Query().Get("code"),
//	})
package workos
