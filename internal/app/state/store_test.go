package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/healthtrack/symptom-agent/internal/adapters/storage"
	"github.com/healthtrack/symptom-agent/internal/app/state"
	"github.com/healthtrack/symptom-agent/internal/domain"
)

func newMemoryBlob(t *testing.T) domain.StateStore {
	t.Helper()
	blob, err := storage.Open(storage.BackendMemory)
	if err != nil {
		t.Fatalf("open memory blob: %v", err)
	}
	return blob
}

func TestFirstLaunchDefaults(t *testing.T) {
	store := state.NewStore(context.Background(), newMemoryBlob(t))

	snap := store.Snapshot()
	if len(snap.Sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(snap.Sessions))
	}
	if snap.Theme != domain.ThemeLight {
		t.Fatalf("expected light theme, got %q", snap.Theme)
	}
	if snap.ActiveSessionID != "" {
		t.Fatalf("expected no active session, got %q", snap.ActiveSessionID)
	}
}

func TestApplyPersistsAndRehydrates(t *testing.T) {
	ctx := context.Background()
	blob := newMemoryBlob(t)

	store := state.NewStore(ctx, blob)
	store.Apply(ctx, func(st domain.AppState) domain.AppState {
		st.Theme = domain.ThemeDark
		st.Sessions = append(st.Sessions, domain.ChatSession{ID: "s1", Title: "Test"})
		st.ActiveSessionID = "s1"
		return st
	})

	// A second store over the same blob must see the mutation.
	rehydrated := state.NewStore(ctx, blob).Snapshot()
	if rehydrated.Theme != domain.ThemeDark {
		t.Fatalf("expected dark theme after rehydrate, got %q", rehydrated.Theme)
	}
	if len(rehydrated.Sessions) != 1 || rehydrated.Sessions[0].ID != "s1" {
		t.Fatalf("expected session s1 after rehydrate, got %+v", rehydrated.Sessions)
	}
	if rehydrated.ActiveSessionID != "s1" {
		t.Fatalf("expected active session s1, got %q", rehydrated.ActiveSessionID)
	}

	// The blob itself holds valid JSON.
	data, err := blob.Load(ctx)
	if err != nil {
		t.Fatalf("load blob: %v", err)
	}
	var decoded domain.AppState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode blob: %v", err)
	}
}

type failingBlob struct{}

func (failingBlob) Load(ctx context.Context) ([]byte, error) {
	return nil, domain.ErrStateNotFound
}

func (failingBlob) Save(ctx context.Context, data []byte) error {
	return errors.New("quota exceeded")
}

func (failingBlob) Close() error { return nil }

func TestPersistFailureStillUpdatesMemory(t *testing.T) {
	ctx := context.Background()
	store := state.NewStore(ctx, failingBlob{})

	store.Apply(ctx, func(st domain.AppState) domain.AppState {
		st.Theme = domain.ThemeDark
		return st
	})

	if store.Snapshot().Theme != domain.ThemeDark {
		t.Fatal("in-memory state must update even when persistence fails")
	}
}

func TestCorruptBlobStartsFresh(t *testing.T) {
	ctx := context.Background()
	blob := newMemoryBlob(t)
	if err := blob.Save(ctx, []byte("{not json")); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	snap := state.NewStore(ctx, blob).Snapshot()
	if len(snap.Sessions) != 0 || snap.Theme != domain.ThemeLight {
		t.Fatalf("expected fresh state over corrupt blob, got %+v", snap)
	}
}

func TestUpdaterGetsACopy(t *testing.T) {
	ctx := context.Background()
	store := state.NewStore(ctx, newMemoryBlob(t))
	store.Apply(ctx, func(st domain.AppState) domain.AppState {
		st.Sessions = append(st.Sessions, domain.ChatSession{ID: "s1", Messages: []domain.Message{}})
		return st
	})

	snap := store.Snapshot()
	snap.Sessions[0].Title = "mutated"

	if store.Snapshot().Sessions[0].Title == "mutated" {
		t.Fatal("snapshot must be a deep copy")
	}
}

func TestBusyFlag(t *testing.T) {
	store := state.NewStore(context.Background(), newMemoryBlob(t))
	if store.Busy() {
		t.Fatal("busy must start false")
	}
	store.SetBusy(true)
	if !store.Busy() {
		t.Fatal("busy must be observable after set")
	}
	store.SetBusy(false)
	if store.Busy() {
		t.Fatal("busy must clear")
	}
}
