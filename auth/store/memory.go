package store

import (
	"context"
	"sync"
)

// MemoryStoreOption configures a memory store
type MemoryStoreOption func(*memoryStore)

// WithTokens seeds the store with an existing token pair.
func WithTokens(accessToken, refreshToken string) MemoryStoreOption {
	return func(m *memoryStore) {
		m.accessToken = accessToken
		m.refreshToken = refreshToken
	}
}

type memoryStore struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	codeVerifier string
	state        string
}

func (m *memoryStore) AccessToken(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken, nil
}

func (m *memoryStore) RefreshToken(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshToken, nil
}

func (m *memoryStore) SetTokens(_ context.Context, accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessToken = accessToken
	m.refreshToken = refreshToken
	return nil
}

func (m *memoryStore) SetAccessToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessToken = token
	return nil
}

func (m *memoryStore) SetRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshToken = token
	return nil
}

func (m *memoryStore) ClearTokens(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessToken = ""
	m.refreshToken = ""
	m.codeVerifier = ""
	m.state = ""
	return nil
}

func (m *memoryStore) CodeVerifier(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.codeVerifier, nil
}

func (m *memoryStore) SetCodeVerifier(_ context.Context, verifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codeVerifier = verifier
	return nil
}

func (m *memoryStore) State(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, nil
}

func (m *memoryStore) SetState(_ context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return nil
}

// PKCEStore is a Store supporting code verifier and state persistence.
type PKCEStore interface {
	Store
	VerifierStore
	StateStore
}

// NewMemoryStore creates an in-process store, suitable for CLI tools and tests.
func NewMemoryStore(options ...MemoryStoreOption) PKCEStore {
	ret := &memoryStore{}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
