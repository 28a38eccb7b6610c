// Package report turns a session's history into a narrative health
// report and hands it to the PDF exporter.
package report

import (
	"context"
	"fmt"

	"github.com/healthtrack/symptom-agent/internal/app/state"
	"github.com/healthtrack/symptom-agent/internal/domain"
	"github.com/healthtrack/symptom-agent/internal/observability"
)

const (
	alertNoSession  = "Please ensure you have an active chat session and valid API key."
	alertNoMessages = "No messages found in this chat session to generate a report."
)

type Generator struct {
	store    *state.Store
	llm      domain.LLMClient
	exporter domain.ReportExporter
}

func NewGenerator(store *state.Store, llm domain.LLMClient, exporter domain.ReportExporter) *Generator {
	return &Generator{
		store:    store,
		llm:      llm,
		exporter: exporter,
	}
}

// Generate resolves the target session (explicit id, else active), asks
// the model for a report and exports it as a PDF. Precondition
// violations and failures surface through the alerter and abort; the
// returned filename is only valid when ok is true.
func (g *Generator) Generate(ctx context.Context, sessionID string, alert domain.Alerter) (string, bool) {
	snap := g.store.Snapshot()

	target := sessionID
	if target == "" {
		target = snap.ActiveSessionID
	}
	if target == "" || !g.llm.Ready() {
		alert.Alert(alertNoSession)
		return "", false
	}

	sess := snap.FindSession(target)
	if sess == nil || len(sess.Messages) == 0 {
		alert.Alert(alertNoMessages)
		return "", false
	}

	log := observability.LoggerFromContext(ctx).With("session_id", sess.ID)
	log.Info("generating report", "message_count", len(sess.Messages))

	g.store.SetBusy(true)
	defer g.store.SetBusy(false)

	text, err := g.llm.Report(ctx, sess.Messages, snap.EffectiveProfile(sess), sess.Condition)
	if err != nil {
		log.Error("report generation failed", "error", err)
		alert.Alert(fmt.Sprintf("Error generating report: %v. Please try again.", err))
		return "", false
	}

	filename, err := g.exporter.Export(ctx, *sess, text)
	if err != nil {
		log.Error("report export failed", "error", err)
		alert.Alert(fmt.Sprintf("Error generating report: %v. Please try again.", err))
		return "", false
	}

	log.Info("report exported", "file", filename)
	return filename, true
}
