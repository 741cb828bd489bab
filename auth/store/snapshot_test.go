package store

import "context"

// snapshot reads the token pair under one lock.
func (m *memoryStore) snapshot(_ context.Context) (string, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken, m.refreshToken, nil
}

func (s *StorageStore) snapshot(ctx context.Context) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accessToken, err := s.read(ctx, AccessTokenKey)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.read(ctx, RefreshTokenKey)
	return accessToken, refreshToken, err
}
