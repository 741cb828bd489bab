package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are claims read from a JWT access token without verifying its
// signature. They are informational only.
type TokenClaims struct {
	Subject   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims inspects the stored access token.
func (c *Client) Claims(ctx context.Context) (*TokenClaims, error) {
	accessToken, err := c.store.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}
	return ParseClaims(accessToken)
}

// ParseClaims decodes token claims; opaque tokens return ErrOpaqueToken.
func ParseClaims(token string) (*TokenClaims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, ErrOpaqueToken
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpaqueToken, err)
	}
	claims := parsed.Claims
	ret := &TokenClaims{}
	ret.Subject, _ = claims.GetSubject()
	ret.Issuer, _ = claims.GetIssuer()
	if audience, _ := claims.GetAudience(); len(audience) > 0 {
		ret.Audience = audience
	}
	if issuedAt, _ := claims.GetIssuedAt(); issuedAt != nil {
		ret.IssuedAt = issuedAt.Time
	}
	if expiresAt, _ := claims.GetExpirationTime(); expiresAt != nil {
		ret.ExpiresAt = expiresAt.Time
	}
	return ret, nil
}
