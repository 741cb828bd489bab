package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"golang.org/x/sync/errgroup"
)

// StorageStore persists tokens and PKCE artifacts as individual objects
// under baseURL, one per namespaced key. Any afs-supported scheme works
// (file://, mem://, gs://, s3:// once registered).
//
// Writes of the token pair are serialized under the store lock, so readers
// going through the same store never observe half of a pair.
type StorageStore struct {
	mu      sync.RWMutex
	fs      afs.Service
	baseURL string
	prefix  string
}

// NewStorageStore creates a durable store rooted at baseURL.
func NewStorageStore(fs afs.Service, baseURL, prefix string) *StorageStore {
	if fs == nil {
		fs = afs.New()
	}
	return &StorageStore{fs: fs, baseURL: baseURL, prefix: prefix}
}

func (s *StorageStore) location(key string) string {
	return url.Join(s.baseURL, NamespacedKey(s.prefix, key))
}

func (s *StorageStore) read(ctx context.Context, key string) (string, error) {
	URL := s.location(key)
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return "", fmt.Errorf("failed to check %v: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return "", fmt.Errorf("failed to read %v: %w", key, err)
	}
	return string(data), nil
}

func (s *StorageStore) write(ctx context.Context, key, value string) error {
	if value == "" {
		return s.remove(ctx, key)
	}
	if err := s.fs.Upload(ctx, s.location(key), 0o600, bytes.NewReader([]byte(value))); err != nil {
		return fmt.Errorf("failed to write %v: %w", key, err)
	}
	return nil
}

func (s *StorageStore) remove(ctx context.Context, key string) error {
	URL := s.location(key)
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil || !ok {
		return err
	}
	if err = s.fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("failed to delete %v: %w", key, err)
	}
	return nil
}

func (s *StorageStore) get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(ctx, key)
}

func (s *StorageStore) set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, key, value)
}

func (s *StorageStore) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, AccessTokenKey)
}

func (s *StorageStore) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKey)
}

func (s *StorageStore) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(ctx, AccessTokenKey, accessToken); err != nil {
		return err
	}
	return s.write(ctx, RefreshTokenKey, refreshToken)
}

func (s *StorageStore) SetAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, AccessTokenKey, token)
}

func (s *StorageStore) SetRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, RefreshTokenKey, token)
}

// ClearTokens deletes all keys concurrently; deletes are independent.
func (s *StorageStore) ClearTokens(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, gctx := errgroup.WithContext(ctx)
	for _, key := range Keys() {
		key := key
		group.Go(func() error {
			return s.remove(gctx, key)
		})
	}
	return group.Wait()
}

func (s *StorageStore) CodeVerifier(ctx context.Context) (string, error) {
	return s.get(ctx, CodeVerifierKey)
}

func (s *StorageStore) SetCodeVerifier(ctx context.Context, verifier string) error {
	return s.set(ctx, CodeVerifierKey, verifier)
}

func (s *StorageStore) State(ctx context.Context) (string, error) {
	return s.get(ctx, StateKey)
}

func (s *StorageStore) SetState(ctx context.Context, state string) error {
	return s.set(ctx, StateKey, state)
}

var _ PKCEStore = (*StorageStore)(nil)
