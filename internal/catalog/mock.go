package catalog

import "github.com/ShayCichocki/embassy/pkg/models"

// MockResources is the built-in TechHub sample catalog.
var MockResources = []models.CatalogResource{
	{
		ID:          "demo-001",
		Title:       "Azure OpenAI Chat Demo",
		Type:        models.ResourceDemo,
		Description: "Interactive chat demo showcasing Azure OpenAI integration",
		Tags:        []string{"ai", "chat", "azure", "openai"},
		Industry:    []string{"general"},
		Link:        "https://techhub.internal/demos/azure-openai-chat",
	},
	{
		ID:          "solution-001",
		Title:       "Document Intelligence Pipeline",
		Type:        models.ResourceSolution,
		Description: "Complete solution for document processing with AI extraction",
		Tags:        []string{"ai", "document", "processing", "pipeline"},
		Industry:    []string{"finance", "legal", "healthcare"},
		Link:        "https://techhub.internal/solutions/doc-intelligence",
	},
	{
		ID:          "component-001",
		Title:       "Azure Functions Auth Handler",
		Type:        models.ResourceComponent,
		Description: "Reusable authentication component for Azure Functions",
		Tags:        []string{"auth", "azure", "functions", "security"},
		Industry:    []string{"general"},
		Link:        "https://techhub.internal/components/auth-handler",
	},
	{
		ID:          "demo-002",
		Title:       "Power BI Embedded Dashboard",
		Type:        models.ResourceDemo,
		Description: "Embedded analytics dashboard with Power BI",
		Tags:        []string{"powerbi", "analytics", "dashboard", "embedded"},
		Industry:    []string{"retail", "manufacturing", "finance"},
		Link:        "https://techhub.internal/demos/powerbi-embedded",
	},
	{
		ID:          "solution-002",
		Title:       "IoT Device Management Platform",
		Type:        models.ResourceSolution,
		Description: "Complete IoT device lifecycle management solution",
		Tags:        []string{"iot", "device", "management", "azure"},
		Industry:    []string{"manufacturing", "agriculture", "utilities"},
		Link:        "https://techhub.internal/solutions/iot-platform",
	},
}

// Mock returns a catalog seeded with MockResources.
func Mock() *Catalog {
	return New(MockResources)
}
