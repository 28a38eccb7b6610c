// Package session creates, selects and deletes chat sessions, and owns
// the profile and theme operations.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthtrack/symptom-agent/internal/app/state"
	"github.com/healthtrack/symptom-agent/internal/domain"
	"github.com/healthtrack/symptom-agent/internal/observability"
)

const (
	defaultTitle     = "New Health Chat"
	defaultCondition = "General Health"

	deletePrompt = "Are you sure you want to delete this chat? This action cannot be undone."
)

type Manager struct {
	store *state.Store
	now   func() time.Time
	newID func() string
}

func NewManager(store *state.Store) *Manager {
	return &Manager{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// CreateSession prepends a fresh session carrying a snapshot of the
// current global profile, and makes it active.
func (m *Manager) CreateSession(ctx context.Context) domain.ChatSession {
	now := m.now()

	var created domain.ChatSession
	m.store.Apply(ctx, func(st domain.AppState) domain.AppState {
		profile := st.UserProfile.Clone()
		created = domain.ChatSession{
			ID:          m.newID(),
			Title:       defaultTitle,
			Condition:   defaultCondition,
			Messages:    []domain.Message{},
			UserProfile: &profile,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		st.Sessions = append([]domain.ChatSession{created}, st.Sessions...)
		st.ActiveSessionID = created.ID
		return st
	})

	observability.LoggerFromContext(ctx).Info("session created", "session_id", created.ID)
	return created
}

// SelectSession makes id the active session. The id is trusted to come
// from the rendered session list and is not validated.
func (m *Manager) SelectSession(ctx context.Context, id string) {
	m.store.Apply(ctx, func(st domain.AppState) domain.AppState {
		st.ActiveSessionID = id
		return st
	})
}

// DeleteSession removes the session after the confirmer approves. When
// the deleted session was active, the first remaining session becomes
// active (or none); the repair happens in the same transition, so the
// active-id invariant holds after every step. Returns false when the
// user declined.
func (m *Manager) DeleteSession(ctx context.Context, id string, confirm domain.Confirmer) bool {
	if confirm == nil || !confirm.Confirm(deletePrompt) {
		return false
	}

	m.store.Apply(ctx, func(st domain.AppState) domain.AppState {
		kept := st.Sessions[:0:0]
		for _, sess := range st.Sessions {
			if sess.ID != id {
				kept = append(kept, sess)
			}
		}
		st.Sessions = kept
		if st.ActiveSessionID == id {
			if len(kept) > 0 {
				st.ActiveSessionID = kept[0].ID
			} else {
				st.ActiveSessionID = ""
			}
		}
		return st
	})

	observability.LoggerFromContext(ctx).Info("session deleted", "session_id", id)
	return true
}

// UpdateProfile replaces the global profile.
func (m *Manager) UpdateProfile(ctx context.Context, profile domain.UserProfile) error {
	if profile.Age < 0 || profile.Age > 120 {
		return fmt.Errorf("age must be between 1 and 120")
	}
	switch profile.Gender {
	case "", domain.GenderMale, domain.GenderFemale, domain.GenderOther, domain.GenderUndisclosed:
	default:
		return fmt.Errorf("unknown gender %q", profile.Gender)
	}

	m.store.Apply(ctx, func(st domain.AppState) domain.AppState {
		st.UserProfile = profile.Clone()
		return st
	})
	return nil
}

// SkipProfile clears the global profile.
func (m *Manager) SkipProfile(ctx context.Context) {
	m.store.Apply(ctx, func(st domain.AppState) domain.AppState {
		st.UserProfile = domain.UserProfile{}
		return st
	})
}

// ToggleTheme flips between light and dark.
func (m *Manager) ToggleTheme(ctx context.Context) domain.Theme {
	var theme domain.Theme
	m.store.Apply(ctx, func(st domain.AppState) domain.AppState {
		if st.Theme == domain.ThemeDark {
			st.Theme = domain.ThemeLight
		} else {
			st.Theme = domain.ThemeDark
		}
		theme = st.Theme
		return st
	})
	return theme
}
