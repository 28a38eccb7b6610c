package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUndisclosed Gender = "prefer-not-to-say"
)

// Message is a single chat message. Messages are append-only and never
// edited after creation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsVoice   bool      `json:"isVoice,omitempty"`
}

// UserProfile holds the optional demographic data used to build prompts.
// Age 0 and Gender "" mean "not specified".
type UserProfile struct {
	Age        int      `json:"age,omitempty"`
	Gender     Gender   `json:"gender,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
}

func (p UserProfile) Empty() bool {
	return p.Age == 0 && p.Gender == "" && len(p.Conditions) == 0
}

func (p UserProfile) Clone() UserProfile {
	out := p
	if p.Conditions != nil {
		out.Conditions = append([]string(nil), p.Conditions...)
	}
	return out
}

// ChatSession is one symptom-tracking conversation. UserProfile is a
// snapshot taken when the session was created; nil means "fall back to
// the global profile".
type ChatSession struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Condition   string       `json:"condition,omitempty"`
	Messages    []Message    `json:"messages"`
	UserProfile *UserProfile `json:"userProfile,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	if s.UserProfile != nil {
		p := s.UserProfile.Clone()
		out.UserProfile = &p
	}
	return out
}

// AppState is the single persisted root. Sessions are ordered
// most-recent-first. ActiveSessionID, when non-empty, must reference a
// session in Sessions.
type AppState struct {
	Sessions        []ChatSession `json:"sessions"`
	ActiveSessionID string        `json:"activeSessionId,omitempty"`
	Theme           Theme         `json:"theme"`
	UserProfile     UserProfile   `json:"userProfile"`
}

// NewAppState returns the first-launch state.
func NewAppState() AppState {
	return AppState{
		Sessions: []ChatSession{},
		Theme:    ThemeLight,
	}
}

func (s AppState) Clone() AppState {
	out := s
	out.Sessions = make([]ChatSession, len(s.Sessions))
	for i, sess := range s.Sessions {
		out.Sessions[i] = sess.Clone()
	}
	out.UserProfile = s.UserProfile.Clone()
	return out
}

// FindSession returns a pointer into Sessions, or nil when id is unknown.
func (s *AppState) FindSession(id string) *ChatSession {
	for i := range s.Sessions {
		if s.Sessions[i].ID == id {
			return &s.Sessions[i]
		}
	}
	return nil
}

// EffectiveProfile resolves the profile for a session: the snapshot taken
// at creation time, falling back to the global profile when absent.
func (s *AppState) EffectiveProfile(sess *ChatSession) UserProfile {
	if sess != nil && sess.UserProfile != nil {
		return *sess.UserProfile
	}
	return s.UserProfile
}
