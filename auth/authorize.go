package auth

import (
	"context"
	"fmt"

	"github.com/viant/dashnex/auth/store"
	"golang.org/x/oauth2"
)

// AuthorizationURL returns the authorization endpoint URL the user should be
// redirected to. Public clients get a PKCE challenge; the verifier is
// written to the store, which therefore has to implement store.VerifierStore.
// The state is persisted when the store implements store.StateStore.
func (c *Client) AuthorizationURL(ctx context.Context, scope string) (string, error) {
	state, err := c.newState()
	if err != nil {
		return "", err
	}
	var options = []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("scope", scope),
	}
	if c.config.IsPublic() {
		verifiers, ok := c.store.(store.VerifierStore)
		if !ok {
			return "", fmt.Errorf("%w: public client requires a store with code verifier support", ErrConfiguration)
		}
		verifier, err := c.newCodeVerifier()
		if err != nil {
			return "", err
		}
		if err = verifiers.SetCodeVerifier(ctx, verifier); err != nil {
			return "", fmt.Errorf("failed to store code verifier: %w", err)
		}
		options = append(options,
			oauth2.SetAuthURLParam("code_challenge", CodeChallenge(verifier)),
			oauth2.SetAuthURLParam("code_challenge_method", codeChallengeMethod),
		)
	}
	if states, ok := c.store.(store.StateStore); ok {
		if err = states.SetState(ctx, state); err != nil {
			return "", fmt.Errorf("failed to store state: %w", err)
		}
	}
	URL := c.config.oauth2Config().AuthCodeURL(state, options...)
	c.logger.Debug().Bool("pkce", c.config.IsPublic()).Str("scope", scope).Msg("built authorization url")
	return URL, nil
}
