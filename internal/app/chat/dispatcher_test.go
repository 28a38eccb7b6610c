package chat_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/healthtrack/symptom-agent/internal/adapters/llm"
	"github.com/healthtrack/symptom-agent/internal/adapters/storage"
	"github.com/healthtrack/symptom-agent/internal/app/chat"
	"github.com/healthtrack/symptom-agent/internal/app/session"
	"github.com/healthtrack/symptom-agent/internal/app/state"
	"github.com/healthtrack/symptom-agent/internal/domain"
)

func newFixture(t *testing.T, mock *llm.MockLLM) (*chat.Dispatcher, *session.Manager, *state.Store) {
	t.Helper()
	blob, err := storage.Open(storage.BackendMemory)
	if err != nil {
		t.Fatalf("open memory blob: %v", err)
	}
	store := state.NewStore(context.Background(), blob)
	return chat.NewDispatcher(store, mock), session.NewManager(store), store
}

func activeSession(t *testing.T, store *state.Store) domain.ChatSession {
	t.Helper()
	snap := store.Snapshot()
	sess := snap.FindSession(snap.ActiveSessionID)
	if sess == nil {
		t.Fatal("no active session")
	}
	return *sess
}

func TestSendWithoutActiveSessionIsNoOp(t *testing.T) {
	ctx := context.Background()
	dispatcher, _, store := newFixture(t, llm.NewMockLLM())

	before := store.Snapshot()
	if res := dispatcher.Send(ctx, "I have a headache", false); res != nil {
		t.Fatal("send without an active session must return nil")
	}
	if !reflect.DeepEqual(before, store.Snapshot()) {
		t.Fatal("state must be unchanged")
	}
}

func TestSendWhenClientNotReadyIsNoOp(t *testing.T) {
	ctx := context.Background()
	mock := &llm.MockLLM{NotReady: true}
	dispatcher, mgr, store := newFixture(t, mock)
	mgr.CreateSession(ctx)

	before := store.Snapshot()
	if res := dispatcher.Send(ctx, "I have a headache", false); res != nil {
		t.Fatal("send with a not-ready client must return nil")
	}
	if !reflect.DeepEqual(before, store.Snapshot()) {
		t.Fatal("state must be unchanged")
	}
	if mock.ChatCalls != 0 {
		t.Fatal("model must not be called")
	}
}

func TestSuccessfulSendAppendsUserThenAssistant(t *testing.T) {
	ctx := context.Background()
	dispatcher, mgr, store := newFixture(t, llm.NewMockLLM())
	created := mgr.CreateSession(ctx)

	time.Sleep(2 * time.Millisecond)
	res := dispatcher.Send(ctx, "I have a headache", false)
	if res == nil || res.Failed {
		t.Fatalf("expected a successful send, got %+v", res)
	}

	sess := activeSession(t, store)
	if len(sess.Messages) != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", len(sess.Messages))
	}
	if sess.Messages[0].Role != domain.RoleUser || sess.Messages[0].Content != "I have a headache" {
		t.Fatalf("first message must be the user message, got %+v", sess.Messages[0])
	}
	if sess.Messages[1].Role != domain.RoleAssistant || sess.Messages[1].Content == "" {
		t.Fatalf("second message must be a non-empty assistant reply, got %+v", sess.Messages[1])
	}
	if !sess.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("updatedAt must advance on send")
	}
	if store.Busy() {
		t.Fatal("busy flag must be cleared after send")
	}
}

func TestFailedSendKeepsUserMessageOnceAndAddsErrorMessage(t *testing.T) {
	ctx := context.Background()
	mock := &llm.MockLLM{Err: errors.New("model unavailable")}
	dispatcher, mgr, store := newFixture(t, mock)
	mgr.CreateSession(ctx)

	res := dispatcher.Send(ctx, "I have a headache", false)
	if res == nil || !res.Failed {
		t.Fatalf("expected a failed send, got %+v", res)
	}

	sess := activeSession(t, store)
	if len(sess.Messages) != 2 {
		t.Fatalf("expected exactly 2 messages (user + error), got %d", len(sess.Messages))
	}

	users := 0
	for _, m := range sess.Messages {
		if m.Role == domain.RoleUser {
			users++
		}
	}
	if users != 1 {
		t.Fatalf("user message must appear exactly once, got %d", users)
	}

	errMsg := sess.Messages[1]
	if errMsg.Role != domain.RoleAssistant || !strings.Contains(errMsg.Content, "model unavailable") {
		t.Fatalf("error message must embed the failure description, got %q", errMsg.Content)
	}
	if store.Busy() {
		t.Fatal("busy flag must be cleared after a failed send")
	}
}

func TestSendPreservesVoiceFlag(t *testing.T) {
	ctx := context.Background()
	dispatcher, mgr, store := newFixture(t, llm.NewMockLLM())
	mgr.CreateSession(ctx)

	dispatcher.Send(ctx, "my knee hurts", true)

	sess := activeSession(t, store)
	if !sess.Messages[0].IsVoice {
		t.Fatal("voice flag must be preserved on the user message")
	}
	if sess.Messages[1].IsVoice {
		t.Fatal("assistant messages are never voice messages")
	}
}

func TestSendUsesSessionProfileSnapshot(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	dispatcher, mgr, _ := newFixture(t, mock)

	if err := mgr.UpdateProfile(ctx, domain.UserProfile{Age: 50}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	mgr.CreateSession(ctx)

	// Changing the global profile after creation must not affect the
	// session's snapshot.
	if err := mgr.UpdateProfile(ctx, domain.UserProfile{Age: 99}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	dispatcher.Send(ctx, "hello", false)
	if mock.ChatCalls != 1 {
		t.Fatalf("expected 1 chat call, got %d", mock.ChatCalls)
	}
	if mock.LastProfile.Age != 50 {
		t.Fatalf("model must see the session's profile snapshot (age 50), got %d", mock.LastProfile.Age)
	}
	if mock.LastCondition != "General Health" {
		t.Fatalf("model must see the session condition, got %q", mock.LastCondition)
	}
}
