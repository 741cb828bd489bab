// Package mock provides an in-process DashNex authorization and API server
// for tests and local demos.
//
// It implements the authorization endpoint (redirecting with a code), the
// token endpoint (authorization_code with client secret or S256 PKCE, and
// refresh_token with optional rotation), and the account API used by the
// auth client. Access tokens are RS256 JWTs.
package mock
