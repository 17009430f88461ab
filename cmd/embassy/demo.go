package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/concierge"
	"github.com/ShayCichocki/embassy/internal/orchestrator"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

var demoCoordinate bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the pre-configured finance use case end to end",
	Long: `Store a sample finance use case (AI document processing on Azure) and run
the full workflow: intent analysis, resource matching, bill of materials,
project creation and archival. Progress events are printed after each phase.

Afterwards the use case's required agents are run through the agent
coordinator; pass --coordinate=false to skip that.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&demoCoordinate, "coordinate", true, "Also run agent coordination for the use case")
}

// demoUseCase is the sample finance engagement.
func demoUseCase(userID string) *models.UseCase {
	uc := models.NewUseCase("AI-Powered Document Processing Solution",
		"We need to build an AI-powered document processing solution for our finance client. "+
			"The solution should be able to extract data from invoices, receipts, and contracts "+
			"using Azure OpenAI and Azure Form Recognizer. It needs to integrate with their "+
			"existing SAP system and provide real-time analytics dashboards. The client requires "+
			"GDPR compliance and prefers Azure cloud infrastructure. Timeline is 3 months with "+
			"a budget of approximately $250,000. The solution should handle 10,000+ documents "+
			"per day in production.",
		userID)
	uc.Industry = "Finance"
	uc.ClientName = "Demo Finance Corp"
	uc.ClientContext = "Large financial services company processing high volumes of documents"
	uc.CloudPreference = "Azure"
	uc.Constraints = models.ProjectConstraints{
		Budget:                 "$250,000",
		Timeline:               "3 months",
		ComplianceRequirements: []string{"GDPR", "SOC2"},
	}
	uc.EngagementStage = "Design"
	uc.SuccessCriteria = []string{"Process 10k+ docs/day", "99.9% uptime", "< 2s processing time"}
	uc.ResourceTypePreference = []models.ResourceType{models.ResourceSolution, models.ResourceComponent}
	return uc
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(appOptions{events: true})
	if err != nil {
		return err
	}
	defer a.Close()

	err = demo(ctx, a)
	if n := a.emitter.DroppedCount(); n > 0 {
		printStatus("⚠", fmt.Sprintf("%d progress events were dropped", n), color.FgYellow)
	}
	return err
}

func demo(ctx context.Context, a *app) error {
	uc := demoUseCase(a.cfg.User.ID)
	if _, err := a.store.Create(ctx, state.CollectionUseCases, uc); err != nil {
		return fmt.Errorf("store demo use case: %w", err)
	}

	printHeading("Demo use case")
	fmt.Printf("  Title:    %s\n", uc.Title)
	fmt.Printf("  Industry: %s\n", uc.Industry)
	fmt.Printf("  Cloud:    %s\n", uc.CloudPreference)
	fmt.Printf("  Timeline: %s\n", uc.Constraints.Timeline)
	fmt.Printf("  ID:       %s\n\n", uc.ID)

	result, err := a.orch.RunWorkflow(ctx, uc.ID)
	drainEvents(a.emitter)
	if err != nil {
		printStatus("✗", "Workflow failed: "+err.Error(), color.FgRed)
		return err
	}

	fmt.Println()
	printHeading("Intent analysis")
	an := result.Analysis
	fmt.Printf("  Complexity: %s  Priority: %s  Effort: %s\n", an.Complexity, an.Priority, an.Effort)
	fmt.Printf("  Agents:     %s\n", joinWorkers(an.RequiredWorkers))
	fmt.Printf("  Special:    %s\n\n", orDash(strings.Join(an.SpecialRequirements, ", ")))

	if result.Match != nil {
		printHeading("Recommended resources")
		printResources(result.Match.Resources)
		fmt.Println()
		printHeading("Bill of materials")
		printBOM(result.Match.BOM)
		fmt.Println()
	}

	printHeading("Workflow")
	for _, s := range result.Steps {
		if s.Success {
			printStatus("✓", fmt.Sprintf("%s (%s) %s", s.Name, s.Agent, dimStyle.Render(s.Message)), color.FgGreen)
		} else {
			printStatus("✗", fmt.Sprintf("%s (%s) %s", s.Name, s.Agent, s.Message), color.FgRed)
		}
	}
	if result.Log != nil {
		fmt.Println(dimStyle.Render("  " + result.Log.Summary))
	}
	fmt.Println()

	if demoCoordinate {
		printHeading("Agent coordination")
		coord, err := a.orch.CoordinateUseCase(ctx, uc.ID)
		drainEvents(a.emitter)
		if err != nil {
			printStatus("✗", "Coordination failed: "+err.Error(), color.FgRed)
		} else {
			for _, wr := range coord.Results {
				switch {
				case !wr.Success:
					printStatus("✗", fmt.Sprintf("%s: %s", wr.Worker, wr.Message), color.FgRed)
				case wr.Placeholder:
					printStatus("○", fmt.Sprintf("%s: %s", wr.Worker, wr.Message), color.FgYellow)
				default:
					printStatus("✓", fmt.Sprintf("%s: %s", wr.Worker, wr.Message), color.FgGreen)
				}
			}
			fmt.Println("  " + coord.Message())
		}
		fmt.Println()
	}

	if id := result.ProjectID(); id != "" {
		report, err := a.archivist.GenerateReport(ctx, archivist.ReportQuery{
			Type:     archivist.ReportProjectSummary,
			EntityID: id,
		})
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
		fmt.Println(concierge.FormatProjectReport(report.Project))
	}
	return nil
}

// drainEvents prints the events buffered so far.
func drainEvents(e *orchestrator.EventEmitter) {
	for {
		select {
		case ev := <-e.Events():
			printEvent(ev)
		default:
			return
		}
	}
}

func printEvent(e orchestrator.Event) {
	switch e.Type {
	case orchestrator.EventWorkerStarted:
		printStatus("→", fmt.Sprintf("%s started", e.Worker), color.FgCyan)
	case orchestrator.EventWorkerFailed, orchestrator.EventCoordinationHalted:
		printStatus("✗", fmt.Sprintf("%s: %v", e.Worker, e.Error), color.FgRed)
	case orchestrator.EventStepCompleted:
		if e.Error != nil {
			printStatus("✗", fmt.Sprintf("%s: %v", e.Step, e.Error), color.FgRed)
			return
		}
		printStatus("✓", e.Step, color.FgGreen)
	}
}

func joinWorkers(ws []orchestrator.WorkerName) string {
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = string(w)
	}
	return strings.Join(names, ", ")
}
