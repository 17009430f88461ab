package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/embassy/internal/catalog"
)

var (
	searchType     string
	searchIndustry string
	searchTags     []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the resource catalog",
	Long: `Search the resource catalog directly.

The query matches titles, descriptions and tags case-insensitively. Filters
narrow the result by type (Demo, Solution, Component), industry or tags.`,
	RunE: runSearch,
}

var bomCmd = &cobra.Command{
	Use:   "bom <use-case-id>",
	Short: "Derive a bill of materials for a stored use case",
	Args:  cobra.ExactArgs(1),
	RunE:  runBOM,
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "Resource type")
	searchCmd.Flags().StringVar(&searchIndustry, "industry", "", "Industry")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "Tag (repeatable)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	f := catalog.Filter{
		Query:    strings.Join(args, " "),
		Type:     searchType,
		Industry: searchIndustry,
		Tags:     searchTags,
	}
	resources := a.nav.Search(f)
	if len(resources) == 0 {
		printStatus("○", "No resources match.", color.FgYellow)
		return nil
	}

	rows := make([][]string, len(resources))
	for i, r := range resources {
		rows[i] = []string{r.ID, r.Title, string(r.Type), strings.Join(r.Industry, ", "), strings.Join(r.Tags, ", ")}
	}
	printTable([]string{"ID", "Title", "Type", "Industry", "Tags"}, rows)
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d of %d resources (%s)", len(resources), a.catalog.Len(), a.catalog.Source())))
	return nil
}

func runBOM(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.nav.GenerateBOM(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("generate bom: %w", err)
	}
	printHeading("Bill of materials")
	printBOM(items)
	return nil
}
