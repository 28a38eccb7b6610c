package storage

import (
	"context"
	"sync"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// memoryStore holds the blob in memory. Not persistent; for tests and
// dev mode.
type memoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (s *memoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, domain.ErrStateNotFound
	}
	return append([]byte(nil), s.data...), nil
}

func (s *memoryStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]byte(nil), data...)
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
