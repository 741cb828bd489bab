package auth

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production authorization server.
const DefaultBaseURL = "https://dashnex.com"

const (
	authorizationPath = "/oauth/v2/auth"
	tokenPath         = "/oauth/v2/token"
)

// ClientConfig is the static client registration.
type ClientConfig struct {
	ClientID string `json:"clientId" yaml:"clientId"`
	// ClientSecret is empty for public clients, which then use PKCE.
	ClientSecret string `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty"`
	// RedirectURI must match the registered value exactly.
	RedirectURI string `json:"redirectUri" yaml:"redirectUri"`
	BaseURL     string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
}

// Validate checks required fields.
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("%w: client id is required", ErrConfiguration)
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return fmt.Errorf("%w: redirect uri is required", ErrConfiguration)
	}
	return nil
}

// IsPublic returns true when the client has no secret.
func (c *ClientConfig) IsPublic() bool {
	return c.ClientSecret == ""
}

func (c *ClientConfig) endpoint(path string) string {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}

func (c *ClientConfig) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.endpoint(authorizationPath),
			TokenURL:  c.endpoint(tokenPath),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
