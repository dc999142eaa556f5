package store

import (
	"context"
	"sync"
)

// InMemoryConfigStore keeps MonitorConfig in process memory. Suitable for
// tests and single-node development; state does not survive restarts.
type InMemoryConfigStore struct {
	mu     sync.RWMutex
	config MonitorConfig
}

func NewInMemory() *InMemoryConfigStore {
	return &InMemoryConfigStore{}
}

func (s *InMemoryConfigStore) Load(_ context.Context) (MonitorConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, nil
}

func (s *InMemoryConfigStore) SetEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Enabled = enabled
	return nil
}

func (s *InMemoryConfigStore) SetLastRegion(_ context.Context, region string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.LastKnownRegion = region
	return nil
}
