// Package state owns the persisted application state. Every mutation
// goes through Store.Apply, which persists the new state before making
// it observable to other callers.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/healthtrack/symptom-agent/internal/domain"
	"github.com/healthtrack/symptom-agent/internal/observability"
)

type Store struct {
	mu    sync.Mutex
	state domain.AppState
	blob  domain.StateStore

	// busy is the shared loading indicator for the message dispatcher
	// and the report generator. It is an indicator, not a lock.
	busy atomic.Bool
}

// NewStore rehydrates the app state from the blob store. A missing blob
// yields the first-launch state; an unreadable blob is logged and
// replaced with a fresh state on the next save.
func NewStore(ctx context.Context, blob domain.StateStore) *Store {
	s := &Store{blob: blob}

	log := observability.LoggerFromContext(ctx)

	data, err := blob.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrStateNotFound):
		log.Info("no persisted app state, starting fresh")
		s.state = domain.NewAppState()
	case err != nil:
		log.Error("failed to load app state, starting fresh", "error", err)
		s.state = domain.NewAppState()
	default:
		var st domain.AppState
		if err := json.Unmarshal(data, &st); err != nil {
			log.Error("failed to decode app state, starting fresh", "error", err)
			st = domain.NewAppState()
		}
		if st.Theme == "" {
			st.Theme = domain.ThemeLight
		}
		if st.Sessions == nil {
			st.Sessions = []domain.ChatSession{}
		}
		s.state = st
	}

	return s
}

// Apply computes a new state from the current one and persists it. The
// updater receives a deep copy, so it may mutate freely. A failed
// persist is logged but does not roll back the in-memory update.
func (s *Store) Apply(ctx context.Context, updater func(domain.AppState) domain.AppState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := updater(s.state.Clone())

	data, err := json.Marshal(next)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to encode app state", "error", err)
	} else if err := s.blob.Save(ctx, data); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to persist app state", "error", err)
	}

	s.state = next
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) SetBusy(v bool) {
	s.busy.Store(v)
}

func (s *Store) Busy() bool {
	return s.busy.Load()
}
