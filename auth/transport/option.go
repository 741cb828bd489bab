package transport

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

type Option func(*RoundTripper)

// WithTransport sets the underlying transport
func WithTransport(transport http.RoundTripper) Option {
	return func(r *RoundTripper) {
		if transport != nil {
			r.transport = transport
		}
	}
}

// WithRefresher sets the session refresher used after a 401
func WithRefresher(refresher Refresher) Option {
	return func(r *RoundTripper) {
		r.refresher = refresher
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *RoundTripper) {
		r.logger = logger
	}
}

// WithOrigin restricts bearer tokens to requests whose scheme and host match
// baseURL; other requests, including redirects elsewhere, go out without
// Authorization and are not refreshed.
func WithOrigin(baseURL string) Option {
	return func(r *RoundTripper) {
		if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
			r.origin = parsed
		}
	}
}
