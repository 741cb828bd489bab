package auth

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for token and API calls.
// Timeouts and cancellation are left to this client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRandom sets the source for state and code verifier generation; it must
// be cryptographically secure outside of tests.
func WithRandom(random io.Reader) Option {
	return func(c *Client) {
		if random != nil {
			c.random = random
		}
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithLegacyTokenRequest exchanges codes with GET and a query string instead
// of a form POST. Only for servers that still require it.
func WithLegacyTokenRequest() Option {
	return func(c *Client) {
		c.legacyTokenRequest = true
	}
}
