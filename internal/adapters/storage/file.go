package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// fileStore keeps the blob in a single JSON file. Saves go through a
// temp file and rename so a crashed write never corrupts the state.
type fileStore struct {
	mu   sync.Mutex
	path string
}

func newFileStore(dir string) (*fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &fileStore{path: filepath.Join(dir, StateKey+".json")}, nil
}

func (s *fileStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *fileStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *fileStore) Close() error {
	return nil
}
