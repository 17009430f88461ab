package models

import (
	"time"

	"github.com/google/uuid"
)

// Project phases used by the workflow. Callers may set other phase names
// through the archivist; only these carry special meaning.
const (
	PhaseIntake           = "intake"
	PhaseResourceMatching = "resource_matching"
	PhaseArchived         = "archived"
	PhasePromoted         = "promoted"
)

// ActivityLog is one entry in a project's activity trail.
type ActivityLog struct {
	Agent     string    `json:"agent"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Summary   string    `json:"summary"`
}

// NewActivity stamps an activity entry with the current time.
func NewActivity(agent, action, summary string) ActivityLog {
	return ActivityLog{
		Agent:     agent,
		Timestamp: time.Now().UTC(),
		Action:    action,
		Summary:   summary,
	}
}

// Project tracks the lifecycle of a use case after intake.
type Project struct {
	ID                   string        `json:"project_id"`
	UseCaseID            string        `json:"use_case_id"`
	Title                string        `json:"title"`
	CurrentPhase         string        `json:"current_phase"`
	CreatedBy            string        `json:"created_by"`
	Collaborators        []string      `json:"collaborators,omitempty"`
	Activity             []ActivityLog `json:"agent_activity_log"`
	StatusNotes          string        `json:"status_notes,omitempty"`
	UpdatedAt            time.Time     `json:"last_updated"`
	Archived             bool          `json:"archived"`
	Promoted             bool          `json:"promoted_to_resource_catalog"`
	FinalLinkedAssets    []string      `json:"final_linked_assets,omitempty"`
	RepositoryURL        string        `json:"repository_url,omitempty"`
	RepositoryVisibility string        `json:"repository_visibility"`
}

// NewProject creates a project in the intake phase for useCase.
func NewProject(useCase *UseCase) *Project {
	return &Project{
		ID:                   uuid.New().String(),
		UseCaseID:            useCase.ID,
		Title:                useCase.Title,
		CurrentPhase:         PhaseIntake,
		CreatedBy:            useCase.CreatedBy,
		UpdatedAt:            time.Now().UTC(),
		RepositoryVisibility: "Private",
	}
}

// RecordID implements state.Record.
func (p *Project) RecordID() string { return p.ID }

// Log appends an activity and bumps the update time.
func (p *Project) Log(entry ActivityLog) {
	p.Activity = append(p.Activity, entry)
	p.UpdatedAt = time.Now().UTC()
}

// InvolvesUser reports whether user created or collaborates on the project.
func (p *Project) InvolvesUser(user string) bool {
	if p.CreatedBy == user {
		return true
	}
	for _, c := range p.Collaborators {
		if c == user {
			return true
		}
	}
	return false
}
