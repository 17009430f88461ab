package orchestrator

import (
	"strings"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// IntentType is the kind of help a use case is asking for.
type IntentType string

// IntentResourceDiscovery is the only intent the analyzer produces today.
const IntentResourceDiscovery IntentType = "resource_discovery"

// Complexity is the analyzer's estimate of how involved a use case is.
type Complexity string

const (
	ComplexityHigh   Complexity = "high"
	ComplexityMedium Complexity = "medium"
	ComplexityLow    Complexity = "low"
)

// Priority reflects how soon the use case needs attention.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityNormal Priority = "normal"
)

// Effort is a display-only estimate of the work involved.
type Effort string

const (
	EffortHigh   Effort = "high"
	EffortMedium Effort = "medium"
	EffortLow    Effort = "low"
)

// Special requirement labels attached by the analyzer.
const (
	RequirementCompliance     = "compliance_review"
	RequirementCost           = "cost_analysis"
	RequirementInfrastructure = "infrastructure_planning"
	RequirementResearch       = "precedent_research"
	RequirementExpedited      = "expedited_process"
)

// complexityLevel pairs a complexity with the description keywords that select it.
type complexityLevel struct {
	level    Complexity
	keywords []string
}

// complexityLevels is checked in order; the first level with a matching keyword wins.
var complexityLevels = []complexityLevel{
	{ComplexityHigh, []string{"enterprise", "scale", "production", "mission-critical", "compliance"}},
	{ComplexityMedium, []string{"integration", "custom", "solution", "multiple"}},
	{ComplexityLow, []string{"demo", "proof", "prototype", "simple"}},
}

var (
	shortDurationKeywords = []string{"week", "days"}
	infraKeywords         = []string{"infrastructure", "deployment"}
)

// IntentAnalysis is the analyzer's verdict for one use case.
type IntentAnalysis struct {
	IntentType          IntentType   `json:"intent_type"`
	Complexity          Complexity   `json:"complexity_level"`
	Priority            Priority     `json:"priority"`
	RequiredWorkers     []WorkerName `json:"required_agents"`
	Effort              Effort       `json:"estimated_effort"`
	SpecialRequirements []string     `json:"special_requirements"`
}

// Expedited reports whether the analysis asks for the expedited process.
func (a IntentAnalysis) Expedited() bool {
	for _, r := range a.SpecialRequirements {
		if r == RequirementExpedited {
			return true
		}
	}
	return false
}

// Analyze classifies uc. It is a pure function of the use case.
func Analyze(uc *models.UseCase) IntentAnalysis {
	description := strings.ToLower(uc.Description)

	analysis := IntentAnalysis{
		IntentType:          IntentResourceDiscovery,
		Complexity:          ComplexityMedium,
		Priority:            PriorityNormal,
		Effort:              EffortLow,
		SpecialRequirements: []string{},
	}

	for _, cl := range complexityLevels {
		if containsAny(description, cl.keywords) {
			analysis.Complexity = cl.level
			break
		}
	}

	switch {
	case uc.Constraints.Urgent():
		analysis.Priority = PriorityHigh
	case containsAny(strings.ToLower(uc.Constraints.Timeline), shortDurationKeywords):
		analysis.Priority = PriorityMedium
	}

	workers := []WorkerName{WorkerNavigator, WorkerArchivist}
	if len(uc.Constraints.ComplianceRequirements) > 0 {
		workers = append(workers, WorkerCompliance)
		analysis.SpecialRequirements = append(analysis.SpecialRequirements, RequirementCompliance)
	}
	if uc.Constraints.Budget != "" {
		workers = append(workers, WorkerCost)
		analysis.SpecialRequirements = append(analysis.SpecialRequirements, RequirementCost)
	}
	if containsAny(description, infraKeywords) {
		workers = append(workers, WorkerInfra)
		analysis.SpecialRequirements = append(analysis.SpecialRequirements, RequirementInfrastructure)
	}
	if analysis.Complexity == ComplexityHigh {
		workers = append(workers, WorkerResearch)
		analysis.SpecialRequirements = append(analysis.SpecialRequirements, RequirementResearch)
	}
	if analysis.Priority == PriorityHigh {
		analysis.SpecialRequirements = append(analysis.SpecialRequirements, RequirementExpedited)
	}
	analysis.RequiredWorkers = workers

	switch {
	case analysis.Complexity == ComplexityHigh:
		analysis.Effort = EffortHigh
	case len(workers) > 3:
		analysis.Effort = EffortMedium
	}

	return analysis
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
