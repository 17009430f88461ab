package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResourceType is the closed set of catalog resource kinds.
type ResourceType string

const (
	ResourceDemo      ResourceType = "Demo"
	ResourceSolution  ResourceType = "Solution"
	ResourceComponent ResourceType = "Component"
)

// ResourceTypes lists every resource type in presentation order.
var ResourceTypes = []ResourceType{ResourceDemo, ResourceSolution, ResourceComponent}

// Valid returns true if the type is a known value.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceDemo, ResourceSolution, ResourceComponent:
		return true
	default:
		return false
	}
}

// ParseResourceType matches s case-insensitively against the known types.
func ParseResourceType(s string) (ResourceType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range ResourceTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// CatalogResource is a searchable entry in the resource catalog.
// The core never mutates catalog entries.
type CatalogResource struct {
	ID          string       `json:"resource_id" yaml:"resource_id"`
	Title       string       `json:"title" yaml:"title"`
	Type        ResourceType `json:"type" yaml:"type"`
	Description string       `json:"description" yaml:"description"`
	Tags        []string     `json:"tags" yaml:"tags"`
	Industry    []string     `json:"industry" yaml:"industry"`
	Link        string       `json:"link" yaml:"link"`
}

// HasIndustry reports whether the resource lists industry (case-insensitive).
func (r CatalogResource) HasIndustry(industry string) bool {
	for _, i := range r.Industry {
		if strings.EqualFold(i, industry) {
			return true
		}
	}
	return false
}

// RecommendedResource is the persisted projection of a scored catalog entry.
type RecommendedResource struct {
	ResourceID     string       `json:"resource_id"`
	Title          string       `json:"title"`
	Type           ResourceType `json:"type"`
	RelevanceScore float64      `json:"relevance_score"`
	Description    string       `json:"description"`
	Link           string       `json:"link"`
}

// BOMItem is one line of a bill of materials.
type BOMItem struct {
	Item     string `json:"item"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Required bool   `json:"required"`
}

// MatchStatus distinguishes the active match from superseded ones.
type MatchStatus string

const (
	MatchActive     MatchStatus = "active"
	MatchSuperseded MatchStatus = "superseded"
)

// ResourceMatch is the search outcome for one use case.
type ResourceMatch struct {
	ID        string    `json:"match_id"`
	UseCaseID string    `json:"use_case_id"`
	MatchedOn time.Time `json:"matched_on"`
	MatchedBy string    `json:"matched_by"`
	// Resources are sorted by descending relevance.
	Resources []RecommendedResource `json:"recommended_resources"`
	BOM       []BOMItem             `json:"generated_bom"`
	Notes     string                `json:"notes,omitempty"`
	Status    MatchStatus           `json:"status"`
}

// NewResourceMatch creates an active match for useCaseID.
func NewResourceMatch(useCaseID, matchedBy string) *ResourceMatch {
	return &ResourceMatch{
		ID:        uuid.New().String(),
		UseCaseID: useCaseID,
		MatchedOn: time.Now().UTC(),
		MatchedBy: matchedBy,
		Status:    MatchActive,
	}
}

// RecordID implements state.Record.
func (m *ResourceMatch) RecordID() string { return m.ID }
