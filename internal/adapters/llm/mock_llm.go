package llm

import (
	"context"
	"fmt"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// MockLLM is a canned domain.LLMClient for local mode and tests.
// Err, when set, fails both calls; NotReady simulates a missing
// credential.
type MockLLM struct {
	ChatReply   string
	ReportReply string
	Err         error
	NotReady    bool

	ChatCalls   int
	ReportCalls int

	LastProfile   domain.UserProfile
	LastCondition string
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Ready() bool {
	return !m.NotReady
}

func (m *MockLLM) Chat(ctx context.Context, history []domain.Message, profile domain.UserProfile, condition string) (string, error) {
	m.ChatCalls++
	m.LastProfile = profile
	m.LastCondition = condition
	if m.Err != nil {
		return "", m.Err
	}
	if m.ChatReply != "" {
		return m.ChatReply, nil
	}
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return fmt.Sprintf("I hear you. You said %q. Could you tell me a bit more about when this started?", last), nil
}

func (m *MockLLM) Report(ctx context.Context, history []domain.Message, profile domain.UserProfile, condition string) (string, error) {
	m.ReportCalls++
	m.LastProfile = profile
	m.LastCondition = condition
	if m.Err != nil {
		return "", m.Err
	}
	if m.ReportReply != "" {
		return m.ReportReply, nil
	}
	return fmt.Sprintf("Summary of reported symptoms over %d messages regarding %s.", len(history), condition), nil
}
