package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/dashnex/auth"
	"github.com/viant/dashnex/internal/collection"
)

type authorizationCode struct {
	redirectURI         string
	state               string
	codeChallenge       string
	codeChallengeMethod string
}

// AuthorizationService simulates the DashNex authorization server and API
type AuthorizationService struct {
	PrivateKey   *rsa.PrivateKey
	Issuer       string
	ClientID     string
	ClientSecret string
	// RedirectURI, when set, is the only redirect accepted
	RedirectURI string
	// EchoState returns the authorization state in token responses
	EchoState bool
	// RotateRefreshTokens issues a new refresh token on each refresh
	RotateRefreshTokens bool
	AccessTokenTTL      time.Duration
	User                auth.User

	TokenHandler     func(w http.ResponseWriter, r *http.Request)
	AuthorizeHandler func(w http.ResponseWriter, r *http.Request)

	codes         *collection.SyncMap[string, *authorizationCode]
	accessTokens  *collection.SyncMap[string, string]
	refreshTokens *collection.SyncMap[string, string]

	mux          sync.Mutex
	activations  map[string][]auth.Activation
	activationID int

	authorizationCodeGrants atomic.Int32
	refreshGrants           atomic.Int32
	apiRequests             atomic.Int32
}

type Option func(*AuthorizationService)

// WithClient sets client credentials; an empty secret makes the client public
func WithClient(clientID, clientSecret string) Option {
	return func(s *AuthorizationService) {
		s.ClientID = clientID
		s.ClientSecret = clientSecret
	}
}

// WithRedirectURI restricts redirects to URI
func WithRedirectURI(URI string) Option {
	return func(s *AuthorizationService) {
		s.RedirectURI = URI
	}
}

// WithStateEcho enables state in token responses
func WithStateEcho() Option {
	return func(s *AuthorizationService) {
		s.EchoState = true
	}
}

// WithoutRefreshRotation keeps refresh tokens across refreshes
func WithoutRefreshRotation() Option {
	return func(s *AuthorizationService) {
		s.RotateRefreshTokens = false
	}
}

// NewAuthorizationService creates a new mock authorization server
func NewAuthorizationService(opts ...Option) (*AuthorizationService, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %v", err)
	}
	service := &AuthorizationService{
		PrivateKey:          privateKey,
		ClientID:            "test_client_id",
		ClientSecret:        "test_client_secret",
		RotateRefreshTokens: true,
		AccessTokenTTL:      time.Hour,
		User: auth.User{
			ID:           1,
			Email:        "jane@example.com",
			FirstName:    "Jane",
			LastName:     "Doe",
			ReferralHash: "ref-1",
			Licenses:     []auth.License{{Product: "builder", ActivationLimit: 3}},
		},
		codes:         collection.NewSyncMap[string, *authorizationCode](),
		accessTokens:  collection.NewSyncMap[string, string](),
		refreshTokens: collection.NewSyncMap[string, string](),
		activations:   map[string][]auth.Activation{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Register registers HTTP handlers for all mock endpoints onto the given ServeMux.
func (m *AuthorizationService) Register(mux *http.ServeMux) {
	mux.HandleFunc("/oauth/v2/auth", m.authorize)
	mux.HandleFunc("/oauth/v2/token", m.token)
	mux.HandleFunc("GET /api/oauth/v2/user", m.authenticated(m.userHandler))
	mux.HandleFunc("GET /api/oauth/v2/activations/{product}/status", m.authenticated(m.activationStatusHandler))
	mux.HandleFunc("POST /api/oauth/v2/activations/{product}/activate", m.authenticated(m.activateHandler))
	mux.HandleFunc("DELETE /api/oauth/v2/activations/{id}/revoke", m.authenticated(m.revokeHandler))
	mux.HandleFunc("DELETE /api/oauth/v2/activations/{product}/domain/revoke", m.authenticated(m.revokeDomainHandler))
}

// Handler returns an http.Handler for all mock endpoints, suitable for any HTTP server.
func (m *AuthorizationService) Handler() http.Handler {
	mux := http.NewServeMux()
	m.Register(mux)
	return mux
}

func (m *AuthorizationService) authorize(w http.ResponseWriter, r *http.Request) {
	if m.AuthorizeHandler != nil {
		m.AuthorizeHandler(w, r)
		return
	}
	m.defaultAuthorizeHandler(w, r)
}

func (m *AuthorizationService) token(w http.ResponseWriter, r *http.Request) {
	if m.TokenHandler != nil {
		m.TokenHandler(w, r)
		return
	}
	m.defaultTokenHandler(w, r)
}

// RevokeAccessTokens invalidates all issued access tokens, as if they expired.
func (m *AuthorizationService) RevokeAccessTokens() {
	m.accessTokens.Clear()
}

// RevokeRefreshTokens invalidates all issued refresh tokens.
func (m *AuthorizationService) RevokeRefreshTokens() {
	m.refreshTokens.Clear()
}

// AuthorizationCodeGrants returns the number of code exchanges served
func (m *AuthorizationService) AuthorizationCodeGrants() int {
	return int(m.authorizationCodeGrants.Load())
}

// RefreshGrants returns the number of refresh requests served
func (m *AuthorizationService) RefreshGrants() int {
	return int(m.refreshGrants.Load())
}

// APIRequests returns the number of API requests received
func (m *AuthorizationService) APIRequests() int {
	return int(m.apiRequests.Load())
}
