package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/ShayCichocki/embassy/pkg/models"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	cellStyle = lipgloss.NewStyle().PaddingRight(2)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// printStatus prints a status line with a colored symbol.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

func printHeading(title string) {
	fmt.Println(headingStyle.Render(title))
}

// printTable renders rows as left-aligned columns.
func printTable(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	render := func(cells []string, bold bool) string {
		out := make([]string, len(cells))
		for i, cell := range cells {
			s := cellStyle.Width(widths[i] + 2)
			if bold {
				s = s.Bold(true)
			}
			out[i] = s.Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, out...)
	}

	fmt.Println(render(header, true))
	for _, row := range rows {
		fmt.Println(render(row, false))
	}
}

func printResources(resources []models.RecommendedResource) {
	rows := make([][]string, len(resources))
	for i, r := range resources {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			r.Title,
			string(r.Type),
			fmt.Sprintf("%.1f%%", r.RelevanceScore*100),
			r.Link,
		}
	}
	printTable([]string{"#", "Resource", "Type", "Relevance", "Link"}, rows)
}

func printBOM(items []models.BOMItem) {
	rows := make([][]string, len(items))
	for i, item := range items {
		need := "optional"
		if item.Required {
			need = color.GreenString("required")
		}
		rows[i] = []string{item.Item, item.Category, item.Source, need}
	}
	printTable([]string{"Item", "Category", "Source", "Need"}, rows)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
