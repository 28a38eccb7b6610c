package domain

import (
	"context"
	"errors"
)

// ErrStateNotFound is returned by StateStore.Load on a fresh backend.
var ErrStateNotFound = errors.New("app state not found")

// LLMClient defines how the core application talks to the generative
// model. Ready reports whether a credential was configured; both calls
// fail immediately when it was not.
type LLMClient interface {
	Ready() bool

	// Chat generates the assistant reply for the latest user message,
	// given the session history, the effective profile and the condition
	// label.
	Chat(ctx context.Context, history []Message, profile UserProfile, condition string) (string, error)

	// Report turns the entire session history into a narrative health
	// report.
	Report(ctx context.Context, history []Message, profile UserProfile, condition string) (string, error)
}

// StateStore persists the serialized AppState blob under a fixed key.
type StateStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// ReportExporter renders a report document for a session and writes it
// out, returning the generated filename.
type ReportExporter interface {
	Export(ctx context.Context, session ChatSession, report string) (string, error)
}

// SpeechRecognizer captures a single utterance and returns its
// transcript. Available reports whether the capability exists on this
// target; Recognize on an unavailable recognizer fails with a
// user-readable message.
type SpeechRecognizer interface {
	Available() bool
	Recognize(ctx context.Context) (string, error)
}

// Confirmer answers a blocking yes/no prompt on behalf of the user.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Alerter shows a blocking, user-visible notice.
type Alerter interface {
	Alert(message string)
}

// AlerterFunc adapts a function to the Alerter interface.
type AlerterFunc func(message string)

func (f AlerterFunc) Alert(message string) { f(message) }
