package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/embassy/internal/archivist"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "List projects or change a project's phase",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your projects, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectStatusCmd = &cobra.Command{
	Use:   "status <project-id> <phase> [notes...]",
	Short: "Move a project to a new phase",
	Long: `Move a project to a new phase and record the change in its activity log.

Moving to "archived" or "promoted" also sets the matching project flag and
advances the use case; a use case that cannot move forward rejects the change.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runProjectStatus,
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectStatusCmd)
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.archivist.RetrieveHistory(cmd.Context(), archivist.HistoryQuery{
		Type:   archivist.HistoryUser,
		UserID: a.cfg.User.ID,
	})
	if err != nil {
		return err
	}
	if len(h.User.Projects) == 0 {
		printStatus("○", "No projects yet. Run 'embassy chat' to start one.", color.FgYellow)
		return nil
	}
	printProjects(h.User.Projects)
	return nil
}

func runProjectStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	id, phase := args[0], strings.ToLower(args[1])
	notes := strings.Join(args[2:], " ")
	previous, err := a.archivist.UpdateProjectStatus(cmd.Context(), id, phase, notes)
	if err != nil {
		return fmt.Errorf("update project status: %w", err)
	}
	printStatus("✓", fmt.Sprintf("Project %s: %s → %s", id, previous, phase), color.FgGreen)
	return nil
}
