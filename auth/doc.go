// Package auth implements a DashNex OAuth 2.0 authorization-code client with
// optional PKCE.
//
// A Client builds the authorization redirect URL, exchanges the returned code
// for an access/refresh token pair, and issues authenticated API requests,
// refreshing the session once when the server rejects an access token.
// Tokens and PKCE artifacts live in a store.Store, so several Client values
// sharing one store behave as one session.
//
//	tokens := store.NewMemoryStore()
//	client, err := auth.New(auth.ClientConfig{
//		ClientID:    "my-client",
//		RedirectURI: "http://localhost:8080/callback",
//	}, tokens)
//	URL, err := client.AuthorizationURL(ctx, "")
//	// redirect the user to URL, then on callback:
//	err = client.ExchangeCodeForToken(ctx, code)
//	user, err := client.CurrentUser(ctx)
package auth
