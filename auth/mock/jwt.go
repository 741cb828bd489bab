package mock

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// createJWT creates a signed access token for subject
func (m *AuthorizationService) createJWT(subject, audience string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": m.Issuer,
		"sub": subject,
		"aud": audience,
		"exp": now.Add(expiry).Unix(),
		"iat": now.Unix(),
		"jti": randomValue(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(m.PrivateKey)
}
