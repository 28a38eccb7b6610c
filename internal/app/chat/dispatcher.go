// Package chat dispatches user messages to the model and folds the
// replies back into the active session.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthtrack/symptom-agent/internal/app/state"
	"github.com/healthtrack/symptom-agent/internal/domain"
	"github.com/healthtrack/symptom-agent/internal/observability"
)

type Dispatcher struct {
	store *state.Store
	llm   domain.LLMClient
	now   func() time.Time
	newID func() string
}

func NewDispatcher(store *state.Store, llm domain.LLMClient) *Dispatcher {
	return &Dispatcher{
		store: store,
		llm:   llm,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// SendResult reports what a send appended to the session. Failed marks
// the assistant message as a synthetic error message.
type SendResult struct {
	UserMessage      domain.Message
	AssistantMessage domain.Message
	Failed           bool
}

// Send appends the user message to the active session immediately, then
// asks the model for a reply. Without an active session or a ready model
// client the call is a no-op and returns nil. A model failure becomes a
// synthetic assistant message; the user message is never duplicated and
// never lost.
func (d *Dispatcher) Send(ctx context.Context, content string, isVoice bool) *SendResult {
	snap := d.store.Snapshot()
	if snap.ActiveSessionID == "" || !d.llm.Ready() {
		return nil
	}
	active := snap.FindSession(snap.ActiveSessionID)
	if active == nil {
		return nil
	}

	log := observability.LoggerFromContext(ctx).With("session_id", active.ID)
	log.Info("sending message", "voice", isVoice)

	userMsg := domain.Message{
		ID:        d.newID(),
		Role:      domain.RoleUser,
		Content:   content,
		Timestamp: d.now(),
		IsVoice:   isVoice,
	}

	// Optimistic update: the user sees their message before the model
	// round trip.
	activeID := active.ID
	d.store.Apply(ctx, func(st domain.AppState) domain.AppState {
		if sess := st.FindSession(activeID); sess != nil {
			sess.Messages = append(sess.Messages, userMsg)
			sess.UpdatedAt = d.now()
		}
		return st
	})

	d.store.SetBusy(true)
	defer d.store.SetBusy(false)

	history := append(append([]domain.Message{}, active.Messages...), userMsg)
	profile := snap.EffectiveProfile(active)

	reply, err := d.llm.Chat(ctx, history, profile, active.Condition)
	if err != nil {
		log.Error("chat generation failed", "error", err)
		errMsg := domain.Message{
			ID:        d.newID(),
			Role:      domain.RoleAssistant,
			Content:   fmt.Sprintf("Sorry, I encountered an error: %v. Please check your API key configuration and try again.", err),
			Timestamp: d.now(),
		}
		d.store.Apply(ctx, func(st domain.AppState) domain.AppState {
			if sess := st.FindSession(activeID); sess != nil {
				if !containsMessage(sess.Messages, userMsg.ID) {
					sess.Messages = append(sess.Messages, userMsg)
				}
				sess.Messages = append(sess.Messages, errMsg)
				sess.UpdatedAt = d.now()
			}
			return st
		})
		return &SendResult{UserMessage: userMsg, AssistantMessage: errMsg, Failed: true}
	}

	assistantMsg := domain.Message{
		ID:        d.newID(),
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: d.now(),
	}
	d.store.Apply(ctx, func(st domain.AppState) domain.AppState {
		if sess := st.FindSession(activeID); sess != nil {
			sess.Messages = append(sess.Messages, assistantMsg)
			sess.UpdatedAt = d.now()
		}
		return st
	})

	log.Info("send completed")
	return &SendResult{UserMessage: userMsg, AssistantMessage: assistantMsg}
}

func containsMessage(msgs []domain.Message, id string) bool {
	for _, m := range msgs {
		if m.ID == id {
			return true
		}
	}
	return false
}
