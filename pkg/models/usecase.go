package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UseCaseStatus represents where a use case is in its lifecycle.
type UseCaseStatus string

const (
	// UseCaseNew is a freshly captured use case with no search results yet.
	UseCaseNew UseCaseStatus = "new"
	// UseCaseMatched indicates the navigator produced a resource match.
	UseCaseMatched UseCaseStatus = "matched"
	// UseCasePromoted indicates the work was promoted to the resource catalog.
	UseCasePromoted UseCaseStatus = "promoted"
	// UseCaseArchived indicates the use case is closed.
	UseCaseArchived UseCaseStatus = "archived"
)

// Valid returns true if the status is a known value.
func (s UseCaseStatus) Valid() bool {
	switch s {
	case UseCaseNew, UseCaseMatched, UseCasePromoted, UseCaseArchived:
		return true
	default:
		return false
	}
}

// rank orders statuses so transitions can only move forward.
// Promoted and archived are both terminal.
func (s UseCaseStatus) rank() int {
	switch s {
	case UseCaseNew:
		return 0
	case UseCaseMatched:
		return 1
	case UseCasePromoted, UseCaseArchived:
		return 2
	default:
		return -1
	}
}

// CanTransition reports whether a use case may move from s to next.
// Staying in the same status is allowed; moving backwards or between
// the two terminal statuses is not.
func (s UseCaseStatus) CanTransition(next UseCaseStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return next.rank() > s.rank()
}

// ProjectConstraints holds budget, timeline and requirement constraints.
type ProjectConstraints struct {
	// Budget is free text ("$250,000", "50k") because intake never parses it.
	Budget string `json:"budget,omitempty"`
	// Timeline is free text ("3 months", "ASAP").
	Timeline string `json:"timeline,omitempty"`
	// KnownDependencies lists dependencies or blockers.
	KnownDependencies []string `json:"known_dependencies,omitempty"`
	// ComplianceRequirements lists regimes such as GDPR or HIPAA.
	ComplianceRequirements []string `json:"compliance_requirements,omitempty"`
}

// UrgencyKeywords mark a timeline as urgent. Matching is case-insensitive substring.
var UrgencyKeywords = []string{"urgent", "asap", "immediate"}

// Urgent reports whether the timeline contains an urgency keyword.
func (c ProjectConstraints) Urgent() bool {
	timeline := strings.ToLower(c.Timeline)
	for _, kw := range UrgencyKeywords {
		if strings.Contains(timeline, kw) {
			return true
		}
	}
	return false
}

// UseCase is the structured intake record describing a project idea.
// It is the root entity; matches and projects reference it by ID.
type UseCase struct {
	// ID is assigned at creation and never changes.
	ID                     string             `json:"use_case_id"`
	Title                  string             `json:"title"`
	Description            string             `json:"description"`
	Industry               string             `json:"industry_vertical,omitempty"`
	ClientName             string             `json:"client_name,omitempty"`
	ClientContext          string             `json:"client_context,omitempty"`
	InternalContacts       []string           `json:"internal_contacts,omitempty"`
	CloudPreference        string             `json:"cloud_preference,omitempty"`
	Constraints            ProjectConstraints `json:"project_constraints"`
	EngagementStage        string             `json:"engagement_stage,omitempty"`
	SuccessCriteria        []string           `json:"success_criteria,omitempty"`
	ResourceTypePreference []ResourceType     `json:"resource_type_preference,omitempty"`
	Status                 UseCaseStatus      `json:"status"`
	CreatedBy              string             `json:"created_by"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"last_updated"`
}

// NewUseCase creates a use case with a fresh ID and status new.
func NewUseCase(title, description, createdBy string) *UseCase {
	now := time.Now().UTC()
	return &UseCase{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Status:      UseCaseNew,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecordID implements state.Record.
func (u *UseCase) RecordID() string { return u.ID }

// PrefersType reports whether t is among the preferred resource types.
func (u *UseCase) PrefersType(t ResourceType) bool {
	for _, p := range u.ResourceTypePreference {
		if p == t {
			return true
		}
	}
	return false
}

// Advance moves the use case to next, refusing backward transitions.
func (u *UseCase) Advance(next UseCaseStatus) error {
	if !u.Status.CanTransition(next) {
		return fmt.Errorf("use case %s: cannot move from %q to %q", u.ID, u.Status, next)
	}
	u.Status = next
	u.UpdatedAt = time.Now().UTC()
	return nil
}
