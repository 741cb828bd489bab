package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/viant/dashnex/auth/store"
)

// ErrNotAuthenticated is returned before any network call when the store
// holds no access token.
var ErrNotAuthenticated = errors.New("not authenticated")

// Refresher obtains a new token pair and writes it to the store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RoundTripper attaches bearer tokens from a store.
type RoundTripper struct {
	store     store.Store
	refresher Refresher
	transport http.RoundTripper
	logger    zerolog.Logger
	origin    *url.URL
}

// New creates a RoundTripper reading tokens from tokens.
func New(tokens store.Store, options ...Option) *RoundTripper {
	ret := &RoundTripper{
		store:     tokens,
		transport: http.DefaultTransport,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (r *RoundTripper) Store() store.Store {
	return r.store
}

// RoundTrip runs at most two attempts: the original one and, after a 401 and
// a successful refresh, one replay with the re-read access token.
func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if !r.trusted(req.URL) {
		r.logger.Debug().Str("url", req.URL.Redacted()).Msg("foreign origin, sending without bearer token")
		outgoing := req.Clone(ctx)
		outgoing.Header.Del("Authorization")
		return r.transport.RoundTrip(outgoing)
	}
	resp, err := r.attempt(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || r.refresher == nil {
		return resp, nil
	}
	refreshToken, err := r.store.RefreshToken(ctx)
	if err != nil {
		discard(resp)
		return nil, err
	}
	if refreshToken == "" {
		return resp, nil
	}
	discard(resp)

	r.logger.Debug().Str("url", req.URL.Redacted()).Msg("access token rejected, refreshing session")
	if err = r.refresher.Refresh(ctx); err != nil {
		return nil, err
	}
	resp, err = r.attempt(req)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		r.logger.Debug().Str("url", req.URL.Redacted()).Msg("refreshed access token rejected")
	}
	return resp, err
}

func (r *RoundTripper) attempt(req *http.Request) (*http.Response, error) {
	accessToken, err := r.store.AccessToken(req.Context())
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}
	outgoing, err := clone(req)
	if err != nil {
		return nil, err
	}
	outgoing.Header.Set("Authorization", "Bearer "+accessToken)
	return r.transport.RoundTrip(outgoing)
}

// trusted reports whether bearer tokens may be sent to target.
func (r *RoundTripper) trusted(target *url.URL) bool {
	if r.origin == nil {
		return true
	}
	return strings.EqualFold(target.Scheme, r.origin.Scheme) && strings.EqualFold(target.Host, r.origin.Host)
}
