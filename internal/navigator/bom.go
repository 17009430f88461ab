package navigator

import (
	"strings"

	"github.com/ShayCichocki/embassy/internal/logging"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// RequiredThreshold is the score above which a matched resource is a required BOM line.
const RequiredThreshold = 0.7

// CloudItems lists the infrastructure lines per cloud provider, keyed by lower-case name.
var CloudItems = map[string][]models.BOMItem{
	"azure": {
		{Item: "Azure Subscription", Category: "Infrastructure", Source: "Azure", Required: true},
		{Item: "Azure DevOps", Category: "Tools", Source: "Azure", Required: true},
		{Item: "Azure Monitor", Category: "Operations", Source: "Azure", Required: false},
	},
	"aws": {
		{Item: "AWS Account", Category: "Infrastructure", Source: "AWS", Required: true},
		{Item: "CodePipeline", Category: "Tools", Source: "AWS", Required: true},
		{Item: "CloudWatch", Category: "Operations", Source: "AWS", Required: false},
	},
	"gcp": {
		{Item: "GCP Project", Category: "Infrastructure", Source: "GCP", Required: true},
		{Item: "Cloud Build", Category: "Tools", Source: "GCP", Required: true},
		{Item: "Cloud Monitoring", Category: "Operations", Source: "GCP", Required: false},
	},
}

var cloudAliases = map[string]string{
	"google cloud": "gcp",
	"google":       "gcp",
	"amazon":       "aws",
	"microsoft":    "azure",
}

// ComplianceRule maps a requirement substring to its BOM line.
type ComplianceRule struct {
	Match string
	Item  string
}

// ComplianceRules are tried in order; the first match wins for each requirement.
var ComplianceRules = []ComplianceRule{
	{"gdpr", "GDPR Compliance Framework"},
	{"hipaa", "HIPAA Compliance Tools"},
	{"soc2", "SOC2 Audit Preparation"},
	{"pci", "PCI-DSS Compliance Suite"},
}

// StandingItems are appended to every BOM.
var StandingItems = []models.BOMItem{
	{Item: "Project Management", Category: "Process", Source: "Standard Practice", Required: true},
	{Item: "Technical Documentation", Category: "Deliverable", Source: "Standard Practice", Required: true},
}

// ExpeditedItem is appended when the timeline is urgent.
var ExpeditedItem = models.BOMItem{
	Item:     "Rapid Deployment Framework",
	Category: "Process",
	Source:   "Best Practice",
	Required: true,
}

// BOMDeriver builds bills of materials. It is safe for concurrent use.
type BOMDeriver struct {
	TopN int
	log  *logging.Logger
}

// NewBOMDeriver returns a deriver using the top n candidates.
func NewBOMDeriver(n int, log *logging.Logger) *BOMDeriver {
	if n <= 0 {
		n = 5
	}
	return &BOMDeriver{TopN: n, log: logging.OrNop(log)}
}

// Derive builds the ordered BOM. candidates may be empty.
func (d *BOMDeriver) Derive(uc *models.UseCase, candidates []ScoredCandidate) []models.BOMItem {
	var items []models.BOMItem

	for i, c := range candidates {
		if i >= d.TopN {
			break
		}
		items = append(items, models.BOMItem{
			Item:     c.Resource.Title,
			Category: "TechHub " + string(c.Resource.Type),
			Source:   "TechHub Catalog",
			Required: c.Score > RequiredThreshold,
		})
	}

	items = append(items, cloudItems(uc.CloudPreference)...)

	for _, req := range uc.Constraints.ComplianceRequirements {
		item, ok := complianceItem(req)
		if !ok {
			d.log.Debug("no BOM line for compliance requirement", "use_case_id", uc.ID, "requirement", req)
			continue
		}
		items = append(items, item)
	}

	items = append(items, StandingItems...)

	if uc.Constraints.Urgent() {
		items = append(items, ExpeditedItem)
	}

	return items
}

func cloudItems(pref string) []models.BOMItem {
	key := strings.ToLower(strings.TrimSpace(pref))
	if alias, ok := cloudAliases[key]; ok {
		key = alias
	}
	table := CloudItems[key]
	return append([]models.BOMItem(nil), table...)
}

func complianceItem(req string) (models.BOMItem, bool) {
	// "SOC 2" and "soc-2" both normalise to "soc2".
	lower := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(req))
	for _, rule := range ComplianceRules {
		if strings.Contains(lower, rule.Match) {
			return models.BOMItem{Item: rule.Item, Category: "Compliance", Source: "Regulatory", Required: true}, true
		}
	}
	return models.BOMItem{}, false
}
