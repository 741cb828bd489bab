package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func testStores(t *testing.T) map[string]func() PKCEStore {
	dir := t.TempDir()
	return map[string]func() PKCEStore{
		"memory": func() PKCEStore { return NewMemoryStore() },
		"storage": func() PKCEStore {
			return NewStorageStore(afs.New(), filepath.Join(dir, "tokens"), "dashnex")
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			require.NoError(t, s.ClearTokens(ctx))

			accessToken, err := s.AccessToken(ctx)
			require.NoError(t, err)
			assert.Empty(t, accessToken)

			require.NoError(t, s.SetTokens(ctx, "access-1", "refresh-1"))
			accessToken, _ = s.AccessToken(ctx)
			refreshToken, _ := s.RefreshToken(ctx)
			assert.Equal(t, "access-1", accessToken)
			assert.Equal(t, "refresh-1", refreshToken)

			require.NoError(t, s.SetAccessToken(ctx, "access-2"))
			require.NoError(t, s.SetRefreshToken(ctx, "refresh-2"))
			accessToken, _ = s.AccessToken(ctx)
			refreshToken, _ = s.RefreshToken(ctx)
			assert.Equal(t, "access-2", accessToken)
			assert.Equal(t, "refresh-2", refreshToken)

			require.NoError(t, s.SetCodeVerifier(ctx, "verifier"))
			require.NoError(t, s.SetState(ctx, "state"))
			verifier, _ := s.CodeVerifier(ctx)
			state, _ := s.State(ctx)
			assert.Equal(t, "verifier", verifier)
			assert.Equal(t, "state", state)

			require.NoError(t, s.SetCodeVerifier(ctx, ""))
			verifier, _ = s.CodeVerifier(ctx)
			assert.Empty(t, verifier)

			require.NoError(t, s.ClearTokens(ctx))
			for _, get := range []func(context.Context) (string, error){s.AccessToken, s.RefreshToken, s.CodeVerifier, s.State} {
				value, err := get(ctx)
				require.NoError(t, err)
				assert.Empty(t, value)
			}
			// clearing an empty store is a no-op
			assert.NoError(t, s.ClearTokens(ctx))
		})
	}
}

func TestStore_SetTokensPairIsAtomic(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			require.NoError(t, s.SetTokens(ctx, "a0", "r0"))
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, pair := range [][2]string{{"a1", "r1"}, {"a2", "r2"}, {"a3", "r3"}} {
					_ = s.SetTokens(ctx, pair[0], pair[1])
				}
			}()
			valid := map[string]string{"a0": "r0", "a1": "r1", "a2": "r2", "a3": "r3"}
			for i := 0; i < 20; i++ {
				pairReader, ok := s.(interface {
					snapshot(ctx context.Context) (string, string, error)
				})
				require.True(t, ok)
				accessToken, refreshToken, err := pairReader.snapshot(ctx)
				require.NoError(t, err)
				assert.Equal(t, valid[accessToken], refreshToken)
			}
			wg.Wait()
			accessToken, _ := s.AccessToken(ctx)
			refreshToken, _ := s.RefreshToken(ctx)
			assert.Equal(t, "a3", accessToken)
			assert.Equal(t, "r3", refreshToken)
		})
	}
}

func TestStorageStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "session")
	first := NewStorageStore(nil, dir, "dashnex")
	require.NoError(t, first.SetTokens(ctx, "access", "refresh"))
	require.NoError(t, first.SetCodeVerifier(ctx, "verifier"))

	second := NewStorageStore(nil, dir, "dashnex")
	accessToken, err := second.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access", accessToken)
	verifier, err := second.CodeVerifier(ctx)
	require.NoError(t, err)
	assert.Equal(t, "verifier", verifier)

	other := NewStorageStore(nil, dir, "other")
	accessToken, err = other.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, accessToken, "prefix namespaces keys")
}

func TestNamespacedKey(t *testing.T) {
	assert.Equal(t, "dashnex_access_token", NamespacedKey("dashnex", AccessTokenKey))
	assert.Equal(t, "state", NamespacedKey("", StateKey))
}
