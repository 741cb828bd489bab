package store

import "context"

// Store is a pluggable persistence layer for the access/refresh token pair.
// Absent values are reported as an empty string.
type Store interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	// SetTokens writes both tokens so that no reader observes one without the other.
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	SetAccessToken(ctx context.Context, token string) error
	SetRefreshToken(ctx context.Context, token string) error
	// ClearTokens removes both tokens and any PKCE artifacts held by the store.
	ClearTokens(ctx context.Context) error
}

// VerifierStore persists the PKCE code verifier between the authorization
// redirect and the code exchange.
type VerifierStore interface {
	CodeVerifier(ctx context.Context) (string, error)
	// SetCodeVerifier stores verifier, an empty value clears it.
	SetCodeVerifier(ctx context.Context, verifier string) error
}

// StateStore persists the anti-CSRF state of the pending authorization.
type StateStore interface {
	State(ctx context.Context) (string, error)
	// SetState stores state, an empty value clears it.
	SetState(ctx context.Context, state string) error
}

// Key names, prefixed with the store namespace by durable implementations.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	CodeVerifierKey = "code_verifier"
	StateKey        = "state"
)

// Keys returns all keys a store may hold.
func Keys() []string {
	return []string{AccessTokenKey, RefreshTokenKey, CodeVerifierKey, StateKey}
}

// NamespacedKey returns key qualified by prefix, e.g. dashnex_access_token.
func NamespacedKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}
