// Package jwt reads the claims of access tokens issued by the hosted
// authentication API.
//
// Tokens reach this package only after the API returned them over TLS and
// they were kept in the server-controlled session, so Decode reads the claims
// without checking the signature. It must not be used on tokens taken
// directly from a request.
//
//	var claims jwt.AccessTokenClaims
//	if err := jwt.Decode(info.AccessToken, &claims); err != nil {
//		// malformed token
//	}
//	if claims.ExpiresWithin(time.Minute, time.Now()) {
//		// refresh
//	}
package jwt
