package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

const callbackPage = `<html><body><p>DashNex sign in complete, you can close this window.</p></body></html>`

// callbackServer waits for the authorization redirect on a loopback redirect URI
type callbackServer struct {
	listener net.Listener
	server   *http.Server
	path     string
	result   chan url.Values
	failed   chan error
}

func newCallbackServer(redirectURI string) (*callbackServer, error) {
	location, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %v: %w", redirectURI, err)
	}
	switch location.Hostname() {
	case "localhost", "127.0.0.1", "::1":
	default:
		return nil, fmt.Errorf("login requires a loopback redirect URI, got %v; use url and exchange instead", redirectURI)
	}
	if location.Port() == "" {
		return nil, fmt.Errorf("redirect URI %v has no port", redirectURI)
	}
	listener, err := net.Listen("tcp", location.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %v: %w", location.Host, err)
	}
	path := location.Path
	if path == "" {
		path = "/"
	}
	ret := &callbackServer{listener: listener, path: path, result: make(chan url.Values, 1), failed: make(chan error, 1)}
	ret.server = &http.Server{Handler: ret}
	return ret, nil
}

func (s *callbackServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != s.path {
		http.NotFound(w, r)
		return
	}
	query := r.URL.Query()
	if !query.Has("code") && !query.Has("error") {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}
	select {
	case s.result <- query:
	default:
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(callbackPage))
}

// Start serves callbacks until Close; a serve failure is reported by Wait.
func (s *callbackServer) Start() {
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.failed <- fmt.Errorf("callback listener failed: %w", err)
	}
}

// Wait returns the first callback query
func (s *callbackServer) Wait(ctx context.Context) (url.Values, error) {
	select {
	case query := <-s.result:
		return query, nil
	case err := <-s.failed:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out waiting for authorization callback: %w", ctx.Err())
	}
}

func (s *callbackServer) Close() error {
	return s.server.Close()
}
