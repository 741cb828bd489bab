package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/viant/dashnex/auth/store"
	"github.com/viant/dashnex/auth/transport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/viant/dashnex/auth"

// Client is the DashNex OAuth client. It keeps no session state of its own:
// tokens, code verifier and state live in the bound store.
type Client struct {
	config             ClientConfig
	store              store.Store
	httpClient         *http.Client
	api                *http.Client
	random             io.Reader
	logger             zerolog.Logger
	tracer             trace.Tracer
	legacyTokenRequest bool
	refreshGroup       singleflight.Group
}

// New creates a client bound to tokens.
func New(config ClientConfig, tokens store.Store, options ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, fmt.Errorf("%w: token store is required", ErrConfiguration)
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	ret := &Client{
		config:     config,
		store:      tokens,
		httpClient: http.DefaultClient,
		random:     rand.Reader,
		logger:     zerolog.Nop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range options {
		opt(ret)
	}
	base := ret.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	ret.api = &http.Client{
		Timeout: ret.httpClient.Timeout,
		Jar:     ret.httpClient.Jar,
		Transport: transport.New(tokens,
			transport.WithTransport(base),
			transport.WithRefresher(ret),
			transport.WithOrigin(config.BaseURL),
			transport.WithLogger(ret.logger),
		),
	}
	return ret, nil
}

// Config returns the client registration
func (c *Client) Config() ClientConfig {
	return c.config
}

// Store returns the bound store
func (c *Client) Store() store.Store {
	return c.store
}

// IsAuthenticated reports whether the store currently holds an access token.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	accessToken, err := c.store.AccessToken(ctx)
	if err != nil {
		return false, err
	}
	return accessToken != "", nil
}

// Logout removes tokens and pending PKCE artifacts from the store.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.ClearTokens(ctx); err != nil {
		return err
	}
	c.logger.Debug().Msg("session cleared")
	return nil
}

// oauth2Context makes x/oauth2 use the configured HTTP client.
func (c *Client) oauth2Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
