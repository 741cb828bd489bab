package auth

import (
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/oauth2"
)

const (
	codeVerifierSize    = 32
	stateSize           = 16
	codeChallengeMethod = "S256"
)

// CodeChallenge returns the S256 challenge for verifier: base64url(sha256(verifier)), unpadded.
func CodeChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

func randomToken(random io.Reader, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (c *Client) newCodeVerifier() (string, error) {
	return randomToken(c.random, codeVerifierSize)
}

func (c *Client) newState() (string, error) {
	return randomToken(c.random, stateSize)
}
