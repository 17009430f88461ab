package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the status of a chat session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionArchived  SessionStatus = "archived"
)

// Interaction is one entry of a session's append-only history.
type Interaction struct {
	Timestamp     time.Time         `json:"timestamp"`
	Agent         string            `json:"agent"`
	Action        string            `json:"action"`
	UserInput     string            `json:"user_input,omitempty"`
	AgentResponse string            `json:"agent_response,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ConversationState is the resumable position of a conversation: the input
// the concierge expects next plus everything collected so far.
type ConversationState struct {
	AwaitedAction string            `json:"awaited_action,omitempty"`
	Collected     map[string]string `json:"collected_fields,omitempty"`
	FieldIndex    int               `json:"field_index,omitempty"`
	// Choices are the ids offered in the last numbered listing.
	Choices []string `json:"choices,omitempty"`
}

// ChatSession is the persisted state of one conversation.
// Sessions are never deleted, only archived.
type ChatSession struct {
	ID               string            `json:"session_id"`
	UserID           string            `json:"user_id"`
	CurrentUseCaseID string            `json:"current_use_case_id,omitempty"`
	CurrentProjectID string            `json:"current_project_id,omitempty"`
	History          []Interaction     `json:"conversation_history"`
	State            ConversationState `json:"state"`
	CreatedAt        time.Time         `json:"created_at"`
	LastActivity     time.Time         `json:"last_activity"`
	Status           SessionStatus     `json:"status"`
}

// NewChatSession creates an active session for userID.
func NewChatSession(userID string) *ChatSession {
	now := time.Now().UTC()
	return &ChatSession{
		ID:           uuid.New().String(),
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		Status:       SessionActive,
	}
}

// RecordID implements state.Record.
func (s *ChatSession) RecordID() string { return s.ID }

// Append adds an interaction, keeping at most limit entries (limit <= 0 keeps all).
func (s *ChatSession) Append(entry Interaction, limit int) {
	s.History = append(s.History, entry)
	if limit > 0 && len(s.History) > limit {
		s.History = append([]Interaction(nil), s.History[len(s.History)-limit:]...)
	}
	s.LastActivity = entry.Timestamp
}
