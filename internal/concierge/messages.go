package concierge

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// formatCollected lists the captured fields in intake order.
func formatCollected(collected map[string]string) string {
	var lines []string
	for _, f := range IntakeFields {
		v := strings.TrimSpace(collected[f.Key])
		if f.Key == FieldTitle && v == "" {
			v = defaultTitle
		}
		if v == "" {
			continue
		}
		if f.Key == FieldDescription && len(v) > descriptionPreviewSize {
			v = v[:descriptionPreviewSize] + "..."
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", f.Label(), v))
	}
	return strings.Join(lines, "\n")
}

// FormatResults presents the top matches, the first BOM lines and the next steps.
func FormatResults(match *models.ResourceMatch, projectID string) string {
	var b strings.Builder
	if match == nil || len(match.Resources) == 0 {
		b.WriteString("I wasn't able to find any direct matches in the current catalog. Consider a custom solution or consult with our experts.\n")
	} else {
		fmt.Fprintf(&b, "I found %d matching resources for your project:\n\n", len(match.Resources))
		for i, r := range match.Resources {
			if i == resultsShown {
				break
			}
			b.WriteString(FormatResource(i+1, r))
			b.WriteString("\n")
		}
	}

	if match != nil && len(match.BOM) > 0 {
		b.WriteString("\nGenerated Bill of Materials:\n")
		b.WriteString(FormatBOM(match.BOM, bomShown))
	}

	if projectID != "" {
		fmt.Fprintf(&b, "\nProject ID: %s\n", projectID)
	}

	b.WriteString(`
Next steps:
  <number>  learn more about a resource
  ALL       details for every match
  BOM       the complete bill of materials
  REPORT    a project summary report
  NEW       start a new project
  EXIT      archive this session and leave`)
	return b.String()
}

// FormatResource describes one recommended resource.
func FormatResource(n int, r models.RecommendedResource) string {
	return fmt.Sprintf("%d. %s (%s)\n   Relevance: %.1f%%\n   %s\n   Link: %s\n",
		n, r.Title, r.Type, r.RelevanceScore*100, r.Description, r.Link)
}

// FormatBOM lists BOM lines. A positive limit truncates the list and notes
// how many lines were left out.
func FormatBOM(items []models.BOMItem, limit int) string {
	var b strings.Builder
	for i, item := range items {
		if limit > 0 && i == limit {
			fmt.Fprintf(&b, "  ... and %d more items\n", len(items)-limit)
			break
		}
		need := "Optional"
		if item.Required {
			need = "Required"
		}
		fmt.Fprintf(&b, "  - %s (%s) - %s\n", item.Item, item.Category, need)
	}
	return b.String()
}

// FormatProjectReport renders a project summary report.
func FormatProjectReport(r *archivist.ProjectReport) string {
	if r == nil {
		return "No report available."
	}
	var b strings.Builder
	b.WriteString("Project Summary Report\n")
	fmt.Fprintf(&b, "Generated at: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Project: %s\n", r.Project.Title)
	fmt.Fprintf(&b, "Phase: %s\n", r.Project.CurrentPhase)
	fmt.Fprintf(&b, "Created by: %s\n\n", r.Project.CreatedBy)
	b.WriteString("Use Case:\n")
	fmt.Fprintf(&b, "  Industry: %s\n", orNone(r.UseCase.Industry))
	fmt.Fprintf(&b, "  Cloud: %s\n\n", orNone(r.UseCase.Cloud))
	b.WriteString("Activity Summary:\n")
	fmt.Fprintf(&b, "  Total activities: %d\n", r.Activity.Total)
	fmt.Fprintf(&b, "  Agents involved: %s\n\n", strings.Join(r.Activity.AgentsInvolved, ", "))
	b.WriteString("Resources:\n")
	fmt.Fprintf(&b, "  Total matches: %d\n", r.Resources.TotalMatches)
	for _, top := range r.Resources.Top {
		fmt.Fprintf(&b, "  - %s (%.1f%%)\n", top.Title, top.RelevanceScore*100)
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}
