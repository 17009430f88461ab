package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowStep records the outcome of one step of a workflow run.
type WorkflowStep struct {
	Name    string `json:"name"`
	Agent   string `json:"agent"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WorkflowLog is the durable record of one orchestration run.
type WorkflowLog struct {
	ID        string         `json:"workflow_id"`
	UseCaseID string         `json:"use_case_id"`
	ProjectID string         `json:"project_id,omitempty"`
	Steps     []WorkflowStep `json:"steps"`
	Success   bool           `json:"success"`
	Summary   string         `json:"summary"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewWorkflowLog creates a log for a run against useCaseID.
func NewWorkflowLog(useCaseID, projectID string, steps []WorkflowStep) *WorkflowLog {
	return &WorkflowLog{
		ID:        uuid.New().String(),
		UseCaseID: useCaseID,
		ProjectID: projectID,
		Steps:     steps,
		Timestamp: time.Now().UTC(),
	}
}

// RecordID implements state.Record.
func (w *WorkflowLog) RecordID() string { return w.ID }

// Succeeded counts successful steps.
func (w *WorkflowLog) Succeeded() int {
	n := 0
	for _, s := range w.Steps {
		if s.Success {
			n++
		}
	}
	return n
}

// ArchiveRecord summarises a session at the time it was archived.
type ArchiveRecord struct {
	ID               string    `json:"archive_id"`
	SessionID        string    `json:"session_id"`
	UserID           string    `json:"user_id"`
	UseCaseID        string    `json:"use_case_id,omitempty"`
	ProjectID        string    `json:"project_id,omitempty"`
	InteractionCount int       `json:"interaction_count"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`
	Summary          string    `json:"summary"`
}

// RecordID implements state.Record.
func (a *ArchiveRecord) RecordID() string { return a.ID }

// NewArchiveRecord snapshots session.
func NewArchiveRecord(session *ChatSession, summary string) *ArchiveRecord {
	return &ArchiveRecord{
		ID:               uuid.New().String(),
		SessionID:        session.ID,
		UserID:           session.UserID,
		UseCaseID:        session.CurrentUseCaseID,
		ProjectID:        session.CurrentProjectID,
		InteractionCount: len(session.History),
		StartedAt:        session.CreatedAt,
		EndedAt:          time.Now().UTC(),
		Summary:          summary,
	}
}
