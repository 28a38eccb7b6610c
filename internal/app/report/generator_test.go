package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/healthtrack/symptom-agent/internal/adapters/llm"
	"github.com/healthtrack/symptom-agent/internal/adapters/storage"
	"github.com/healthtrack/symptom-agent/internal/app/report"
	"github.com/healthtrack/symptom-agent/internal/app/session"
	"github.com/healthtrack/symptom-agent/internal/app/state"
	"github.com/healthtrack/symptom-agent/internal/domain"
)

type fakeExporter struct {
	lastSession domain.ChatSession
	lastReport  string
	err         error
	calls       int
}

func (f *fakeExporter) Export(ctx context.Context, sess domain.ChatSession, reportText string) (string, error) {
	f.calls++
	f.lastSession = sess
	f.lastReport = reportText
	if f.err != nil {
		return "", f.err
	}
	return "symptom-report-2026-08-31-general-health.pdf", nil
}

type recordingAlerter struct {
	messages []string
}

func (a *recordingAlerter) Alert(msg string) {
	a.messages = append(a.messages, msg)
}

func newFixture(t *testing.T, mock *llm.MockLLM, exporter *fakeExporter) (*report.Generator, *session.Manager, *state.Store) {
	t.Helper()
	blob, err := storage.Open(storage.BackendMemory)
	if err != nil {
		t.Fatalf("open memory blob: %v", err)
	}
	store := state.NewStore(context.Background(), blob)
	return report.NewGenerator(store, mock, exporter), session.NewManager(store), store
}

func seedMessages(t *testing.T, store *state.Store, sessionID string, contents ...string) {
	t.Helper()
	store.Apply(context.Background(), func(st domain.AppState) domain.AppState {
		sess := st.FindSession(sessionID)
		if sess == nil {
			t.Fatalf("session %s not found", sessionID)
		}
		for i, c := range contents {
			role := domain.RoleUser
			if i%2 == 1 {
				role = domain.RoleAssistant
			}
			sess.Messages = append(sess.Messages, domain.Message{
				ID: c, Role: role, Content: c, Timestamp: time.Now(),
			})
		}
		return st
	})
}

func TestGenerateWithoutSessionAlerts(t *testing.T) {
	gen, _, _ := newFixture(t, llm.NewMockLLM(), &fakeExporter{})
	alerter := &recordingAlerter{}

	if _, ok := gen.Generate(context.Background(), "", alerter); ok {
		t.Fatal("generate without a session must fail")
	}
	if len(alerter.messages) != 1 || !strings.Contains(alerter.messages[0], "active chat session") {
		t.Fatalf("expected the no-session alert, got %v", alerter.messages)
	}
}

func TestGenerateWhenNotReadyAlerts(t *testing.T) {
	ctx := context.Background()
	mock := &llm.MockLLM{NotReady: true}
	gen, mgr, _ := newFixture(t, mock, &fakeExporter{})
	mgr.CreateSession(ctx)

	alerter := &recordingAlerter{}
	if _, ok := gen.Generate(ctx, "", alerter); ok {
		t.Fatal("generate with a not-ready client must fail")
	}
	if mock.ReportCalls != 0 {
		t.Fatal("model must not be called")
	}
}

func TestGenerateOnEmptySessionAlertsWithoutModelCall(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	gen, mgr, _ := newFixture(t, mock, &fakeExporter{})
	mgr.CreateSession(ctx)

	alerter := &recordingAlerter{}
	if _, ok := gen.Generate(ctx, "", alerter); ok {
		t.Fatal("generate on an empty session must fail")
	}
	if mock.ReportCalls != 0 {
		t.Fatal("model must never be invoked for an empty session")
	}
	if len(alerter.messages) != 1 || !strings.Contains(alerter.messages[0], "No messages") {
		t.Fatalf("expected the empty-session alert, got %v", alerter.messages)
	}
}

func TestGenerateExportsReport(t *testing.T) {
	ctx := context.Background()
	mock := &llm.MockLLM{ReportReply: "Symptom summary: recurring headaches."}
	exporter := &fakeExporter{}
	gen, mgr, store := newFixture(t, mock, exporter)

	sess := mgr.CreateSession(ctx)
	seedMessages(t, store, sess.ID, "I have a headache", "Tell me more")

	alerter := &recordingAlerter{}
	filename, ok := gen.Generate(ctx, "", alerter)
	if !ok {
		t.Fatalf("generate failed, alerts: %v", alerter.messages)
	}
	if filename == "" {
		t.Fatal("expected a filename")
	}
	if exporter.calls != 1 || exporter.lastReport != "Symptom summary: recurring headaches." {
		t.Fatalf("exporter must receive the model's report, got %q", exporter.lastReport)
	}
	if exporter.lastSession.ID != sess.ID {
		t.Fatal("exporter must receive the target session")
	}
	if store.Busy() {
		t.Fatal("busy flag must be cleared after generation")
	}
}

func TestGenerateTargetsExplicitSession(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockLLM()
	exporter := &fakeExporter{}
	gen, mgr, store := newFixture(t, mock, exporter)

	older := mgr.CreateSession(ctx)
	seedMessages(t, store, older.ID, "my back aches")
	mgr.CreateSession(ctx) // active, but empty

	alerter := &recordingAlerter{}
	if _, ok := gen.Generate(ctx, older.ID, alerter); !ok {
		t.Fatalf("generate for explicit session failed, alerts: %v", alerter.messages)
	}
	if exporter.lastSession.ID != older.ID {
		t.Fatal("explicit session id must win over the active session")
	}
}

func TestGenerateModelFailureAlerts(t *testing.T) {
	ctx := context.Background()
	mock := &llm.MockLLM{Err: errors.New("quota exhausted")}
	gen, mgr, store := newFixture(t, mock, &fakeExporter{})

	sess := mgr.CreateSession(ctx)
	seedMessages(t, store, sess.ID, "I feel dizzy")

	alerter := &recordingAlerter{}
	if _, ok := gen.Generate(ctx, "", alerter); ok {
		t.Fatal("generate must fail when the model fails")
	}
	if len(alerter.messages) != 1 || !strings.Contains(alerter.messages[0], "quota exhausted") {
		t.Fatalf("alert must embed the failure description, got %v", alerter.messages)
	}
	if store.Busy() {
		t.Fatal("busy flag must be cleared after a failure")
	}
}

func TestGenerateExportFailureAlerts(t *testing.T) {
	ctx := context.Background()
	exporter := &fakeExporter{err: errors.New("disk full")}
	gen, mgr, store := newFixture(t, llm.NewMockLLM(), exporter)

	sess := mgr.CreateSession(ctx)
	seedMessages(t, store, sess.ID, "I feel dizzy")

	alerter := &recordingAlerter{}
	if _, ok := gen.Generate(ctx, "", alerter); ok {
		t.Fatal("generate must fail when the export fails")
	}
	if len(alerter.messages) != 1 || !strings.Contains(alerter.messages[0], "disk full") {
		t.Fatalf("alert must embed the export failure, got %v", alerter.messages)
	}
}
