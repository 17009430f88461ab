package concierge

import (
	"strings"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// Intake field keys.
const (
	FieldTitle             = "title"
	FieldDescription       = "description"
	FieldIndustry          = "industry_vertical"
	FieldClientName        = "client_name"
	FieldClientContext     = "client_context"
	FieldInternalContacts  = "internal_contacts"
	FieldCloudPreference   = "cloud_preference"
	FieldBudget            = "budget"
	FieldTimeline          = "timeline"
	FieldDependencies      = "known_dependencies"
	FieldCompliance        = "compliance_requirements"
	FieldEngagementStage   = "engagement_stage"
	FieldSuccessCriteria   = "success_criteria"
	FieldResourceTypes     = "resource_type_preference"
	defaultTitle           = "New Project"
	descriptionPreviewSize = 200
)

// IntakeField is one question of the guided intake.
type IntakeField struct {
	Key    string
	Prompt string
	// List fields take comma-separated values.
	List bool
}

// Label is the key in title case ("Cloud Preference").
func (f IntakeField) Label() string {
	words := strings.Split(f.Key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// IntakeFields is the guided intake, in the order it is asked.
var IntakeFields = []IntakeField{
	{Key: FieldTitle, Prompt: "Project title or brief name"},
	{Key: FieldDescription, Prompt: "Business or technical use-case description"},
	{Key: FieldIndustry, Prompt: "Industry vertical (e.g., Finance, Healthcare, Retail)"},
	{Key: FieldClientName, Prompt: "Specific client name"},
	{Key: FieldClientContext, Prompt: "Client use-case context and background"},
	{Key: FieldInternalContacts, Prompt: "Internal contacts involved (comma-separated)", List: true},
	{Key: FieldCloudPreference, Prompt: "Client cloud choice (Azure, AWS, GCP, Multi-cloud)"},
	{Key: FieldBudget, Prompt: "Budget constraints or estimates"},
	{Key: FieldTimeline, Prompt: "Expected delivery timeline or deadlines"},
	{Key: FieldDependencies, Prompt: "Known dependencies or blockers (comma-separated)", List: true},
	{Key: FieldCompliance, Prompt: "Compliance or security requirements (comma-separated)", List: true},
	{Key: FieldEngagementStage, Prompt: "Stage of engagement (Discovery, Design, Build, Pilot, Production)"},
	{Key: FieldSuccessCriteria, Prompt: "Primary success criteria and goals (comma-separated)", List: true},
	{Key: FieldResourceTypes, Prompt: "Desired resource types: Demo, Solution, Component (comma-separated)", List: true},
}

// lookupField finds a field by key or label, ignoring case, spaces and hyphens.
func lookupField(name string) (IntakeField, bool) {
	name = normalizeFieldName(name)
	for _, f := range IntakeFields {
		if f.Key == name {
			return f, true
		}
	}
	return IntakeField{}, false
}

func normalizeFieldName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

// splitList splits a comma-separated answer, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BuildUseCase turns collected intake answers into a use case owned by userID.
// Unknown resource types are dropped; plurals such as "Demos" are accepted.
func BuildUseCase(collected map[string]string, userID string) *models.UseCase {
	title := strings.TrimSpace(collected[FieldTitle])
	if title == "" {
		title = defaultTitle
	}
	uc := models.NewUseCase(title, strings.TrimSpace(collected[FieldDescription]), userID)
	uc.Industry = collected[FieldIndustry]
	uc.ClientName = collected[FieldClientName]
	uc.ClientContext = collected[FieldClientContext]
	uc.InternalContacts = splitList(collected[FieldInternalContacts])
	uc.CloudPreference = collected[FieldCloudPreference]
	uc.EngagementStage = collected[FieldEngagementStage]
	uc.SuccessCriteria = splitList(collected[FieldSuccessCriteria])
	uc.Constraints = models.ProjectConstraints{
		Budget:                 collected[FieldBudget],
		Timeline:               collected[FieldTimeline],
		KnownDependencies:      splitList(collected[FieldDependencies]),
		ComplianceRequirements: splitList(collected[FieldCompliance]),
	}
	for _, t := range splitList(collected[FieldResourceTypes]) {
		rt, ok := models.ParseResourceType(t)
		if !ok {
			rt, ok = models.ParseResourceType(strings.TrimSuffix(strings.TrimSpace(t), "s"))
		}
		if ok && !uc.PrefersType(rt) {
			uc.ResourceTypePreference = append(uc.ResourceTypePreference, rt)
		}
	}
	return uc
}
