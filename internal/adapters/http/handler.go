// Package httpadapter exposes the UI events over HTTP for the web
// front-end.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/healthtrack/symptom-agent/internal/app/chat"
	"github.com/healthtrack/symptom-agent/internal/app/report"
	"github.com/healthtrack/symptom-agent/internal/app/session"
	"github.com/healthtrack/symptom-agent/internal/app/state"
	"github.com/healthtrack/symptom-agent/internal/domain"
)

type Server struct {
	store    *state.Store
	sessions *session.Manager
	chat     *chat.Dispatcher
	reports  *report.Generator
	speech   domain.SpeechRecognizer
}

func NewServer(
	store *state.Store,
	sessions *session.Manager,
	dispatcher *chat.Dispatcher,
	reports *report.Generator,
	speech domain.SpeechRecognizer,
) http.Handler {
	s := &Server{
		store:    store,
		sessions: sessions,
		chat:     dispatcher,
		reports:  reports,
		speech:   speech,
	}

	r := chi.NewRouter()
	r.Use(withRequestID, withLogging, withCORS)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/state", s.handleGetState)

	r.Put("/profile", s.handleUpdateProfile)
	r.Delete("/profile", s.handleSkipProfile)
	r.Post("/theme/toggle", s.handleToggleTheme)

	r.Post("/sessions", s.handleCreateSession)
	r.Post("/sessions/{id}/select", s.handleSelectSession)
	r.Delete("/sessions/{id}", s.handleDeleteSession)

	r.Post("/messages", s.handleSendMessage)
	r.Post("/report", s.handleGenerateReport)
	r.Post("/voice/transcribe", s.handleTranscribe)

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsVoice   bool      `json:"is_voice,omitempty"`
}

type sessionResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Condition string            `json:"condition"`
	Messages  []messageResponse `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type stateResponse struct {
	Sessions        []sessionResponse  `json:"sessions"`
	ActiveSessionID string             `json:"active_session_id,omitempty"`
	Theme           string             `json:"theme"`
	UserProfile     domain.UserProfile `json:"user_profile"`
	Busy            bool               `json:"busy"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
	IsVoice bool   `json:"is_voice,omitempty"`
}

type sendMessageResponse struct {
	UserMessage      messageResponse `json:"user_message"`
	AssistantMessage messageResponse `json:"assistant_message"`
	Failed           bool            `json:"failed,omitempty"`
}

type generateReportRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type generateReportResponse struct {
	File string `json:"file"`
}

type transcribeRequest struct {
	PendingText string `json:"pending_text,omitempty"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.toStateResponse())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := s.sessions.UpdateProfile(r.Context(), profile); err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSkipProfile(w http.ResponseWriter, r *http.Request) {
	s.sessions.SkipProfile(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme := s.sessions.ToggleTheme(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	created := s.sessions.CreateSession(r.Context())
	writeJSON(w, http.StatusCreated, toSessionResponse(created))
}

func (s *Server) handleSelectSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.SelectSession(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	// The confirm parameter is the HTTP stand-in for the blocking
	// yes/no prompt; without it the delete is refused.
	confirmed := strings.EqualFold(r.URL.Query().Get("confirm"), "true")
	confirm := domain.ConfirmerFunc(func(string) bool { return confirmed })

	if !s.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id"), confirm) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "deletion not confirmed",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		badRequest(w, "content is required")
		return
	}

	result := s.chat.Send(r.Context(), req.Content, req.IsVoice)
	if result == nil {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "no active session or model client not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:      toMessageResponse(result.UserMessage),
		AssistantMessage: toMessageResponse(result.AssistantMessage),
		Failed:           result.Failed,
	})
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req generateReportRequest
	if r.Body != nil {
		// An empty body targets the active session.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var alertMsg string
	alert := domain.AlerterFunc(func(msg string) { alertMsg = msg })

	filename, ok := s.reports.Generate(r.Context(), req.SessionID, alert)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": alertMsg,
		})
		return
	}
	writeJSON(w, http.StatusOK, generateReportResponse{File: filename})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if !s.speech.Available() {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "Speech recognition is not available.",
		})
		return
	}

	transcript, err := s.speech.Recognize(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "speech recognition failed",
		})
		return
	}

	text := req.PendingText
	if text != "" && transcript != "" {
		text += " "
	}
	text += transcript
	writeJSON(w, http.StatusOK, transcribeResponse{Text: text})
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func (s *Server) toStateResponse() stateResponse {
	snap := s.store.Snapshot()
	sessions := make([]sessionResponse, 0, len(snap.Sessions))
	for _, sess := range snap.Sessions {
		sessions = append(sessions, toSessionResponse(sess))
	}
	return stateResponse{
		Sessions:        sessions,
		ActiveSessionID: snap.ActiveSessionID,
		Theme:           string(snap.Theme),
		UserProfile:     snap.UserProfile,
		Busy:            s.store.Busy(),
	}
}

func toSessionResponse(sess domain.ChatSession) sessionResponse {
	msgs := make([]messageResponse, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		msgs = append(msgs, toMessageResponse(m))
	}
	return sessionResponse{
		ID:        sess.ID,
		Title:     sess.Title,
		Condition: sess.Condition,
		Messages:  msgs,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.Timestamp,
		IsVoice:   m.IsVoice,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}
