package models

import "time"

// Status is the lifecycle phase of the active session. It is the single
// source of truth for which operations are currently allowed.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Speaker identifies who authored a chat message.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ChatMessage is a single entry in the session's chat transcript.
type ChatMessage struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}

// Session is the single active unit of work: one uploaded dataset, its
// forecast extension, the generated analysis and the chat transcript.
// A new upload always supersedes the previous session, never merges.
type Session struct {
	Status        Status          `json:"status"`
	Series        *CombinedSeries `json:"series,omitempty"`
	AnalysisText  string          `json:"analysis_text,omitempty"`
	ChatHistory   []ChatMessage   `json:"chat_history"`
	FailureReason string          `json:"failure_reason,omitempty"`
}

// HasSeries reports whether a combined series has been loaded.
func (s Session) HasSeries() bool {
	return s.Series != nil && s.Series.Len() > 0
}
