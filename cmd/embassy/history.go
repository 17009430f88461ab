package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/concierge"
)

const timeLayout = "2006-01-02 15:04"

var (
	outputJSON   bool
	historyLimit int
)

var reportCmd = &cobra.Command{
	Use:   "report <project|user> <id>",
	Short: "Generate a project summary or user activity report",
	Args:  cobra.ExactArgs(2),
	RunE:  runReport,
}

var historyCmd = &cobra.Command{
	Use:   "history <session|project|user> <id>",
	Short: "Show stored history for a session, project or user",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistory,
}

func init() {
	reportCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the report as JSON")
	historyCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the history as JSON")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Most recent entries to show (default 50)")
}

func runReport(cmd *cobra.Command, args []string) error {
	q := archivist.ReportQuery{}
	switch args[0] {
	case "project":
		q.Type = archivist.ReportProjectSummary
		q.EntityID = args[1]
	case "user":
		q.Type = archivist.ReportUserActivity
		q.UserID = args[1]
	default:
		return fmt.Errorf("unknown report kind %q: want project or user", args[0])
	}

	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.archivist.GenerateReport(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if outputJSON {
		return printJSON(report)
	}

	if report.Project != nil {
		fmt.Println(concierge.FormatProjectReport(report.Project))
		return nil
	}

	u := report.UserActivity
	printHeading("User activity: " + u.UserID)
	fmt.Printf("  Projects: %d (%d active, %d promoted)\n", u.TotalProjects, u.ActiveProjects, u.PromotedProjects)
	fmt.Printf("  Sessions: %d\n", u.TotalSessions)
	if u.LastSession != nil {
		fmt.Printf("  Last session: %s\n", u.LastSession.Local().Format(timeLayout))
	}
	if len(u.RecentProjects) > 0 {
		fmt.Println()
		printProjects(u.RecentProjects)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	q := archivist.HistoryQuery{Type: archivist.HistoryType(args[0]), Limit: historyLimit}
	switch q.Type {
	case archivist.HistorySession, archivist.HistoryProject:
		q.EntityID = args[1]
	case archivist.HistoryUser:
		q.UserID = args[1]
	default:
		return fmt.Errorf("unknown history kind %q: want session, project or user", args[0])
	}

	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.archivist.RetrieveHistory(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("retrieve history: %w", err)
	}
	if outputJSON {
		return printJSON(h)
	}

	switch {
	case h.Session != nil:
		s := h.Session
		printHeading("Session " + s.SessionID)
		fmt.Printf("  Status: %s  Interactions: %d  Last activity: %s\n\n",
			s.Status, s.ConversationCount, s.LastActivity.Local().Format(timeLayout))
		rows := make([][]string, len(s.Recent))
		for i, e := range s.Recent {
			text := e.UserInput
			if e.AgentResponse != "" {
				text = firstLine(e.AgentResponse)
			}
			rows[i] = []string{e.Timestamp.Local().Format(timeLayout), e.Agent, e.Action, text}
		}
		printTable([]string{"Time", "Agent", "Action", "Text"}, rows)

	case h.Project != nil:
		p := h.Project
		printHeading("Project " + p.ProjectID)
		fmt.Printf("  Phase: %s  Activities: %d\n\n", p.CurrentPhase, p.ActivityCount)
		rows := make([][]string, len(p.Recent))
		for i, e := range p.Recent {
			rows[i] = []string{e.Timestamp.Local().Format(timeLayout), e.Agent, e.Action, e.Summary}
		}
		printTable([]string{"Time", "Agent", "Action", "Summary"}, rows)

	case h.User != nil:
		u := h.User
		printHeading("User " + u.UserID)
		fmt.Printf("  Sessions: %d  Projects: %d\n\n", u.TotalSessions, u.TotalProjects)
		rows := make([][]string, len(u.RecentSessions))
		for i, s := range u.RecentSessions {
			rows[i] = []string{s.SessionID, s.LastActivity.Local().Format(timeLayout), strconv.Itoa(s.ConversationCount)}
		}
		printTable([]string{"Session", "Last activity", "Interactions"}, rows)
		if len(u.Projects) > 0 {
			fmt.Println()
			printProjects(u.Projects)
		}
	}
	return nil
}

func printProjects(ps []archivist.ProjectSummary) {
	rows := make([][]string, len(ps))
	for i, p := range ps {
		rows[i] = []string{p.ProjectID, p.Title, p.Phase, p.LastUpdated.Local().Format(timeLayout)}
	}
	printTable([]string{"Project", "Title", "Phase", "Updated"}, rows)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
