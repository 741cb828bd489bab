package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/viant/dashnex/auth/transport"
	"golang.org/x/oauth2"
)

var (
	// ErrConfiguration reports a client/store combination that cannot run the flow,
	// e.g. a public client without code verifier persistence.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotAuthenticated is returned before a protected call when no access token is stored.
	ErrNotAuthenticated = transport.ErrNotAuthenticated
	ErrTokenExchange    = errors.New("token exchange failed")
	ErrStateMismatch    = errors.New("state mismatch")
	// ErrRefreshFailed is returned when the session could not be refreshed.
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrNoRefreshToken = fmt.Errorf("%w: no refresh token available", ErrRefreshFailed)
	ErrRequestFailed  = errors.New("request failed")
	ErrOpaqueToken    = errors.New("access token is not a JWT")
)

// StatusError is a non-success HTTP response; it unwraps to its Kind.
type StatusError struct {
	Kind       error
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}

func newStatusError(kind error, resp *http.Response, body []byte) *StatusError {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &StatusError{Kind: kind, StatusCode: resp.StatusCode, Status: status, Body: body}
}

// tokenError maps a token endpoint failure to kind, keeping the HTTP status when known.
func tokenError(kind error, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return newStatusError(kind, retrieveErr.Response, retrieveErr.Body)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
