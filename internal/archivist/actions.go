// Package archivist records conversation history, workflow runs and project
// status changes, and produces history views and reports from them.
package archivist

import "strings"

// Action is the closed set of archival requests.
type Action int

const (
	// ActionUnrecognized is any label that is not a known action.
	ActionUnrecognized Action = iota
	ActionLogInteraction
	ActionLogWorkflow
	ActionUpdateProjectStatus
	ActionRetrieveHistory
	ActionArchiveSession
	ActionGenerateReport
)

var actionNames = map[Action]string{
	ActionUnrecognized:        "unrecognized",
	ActionLogInteraction:      "log_interaction",
	ActionLogWorkflow:         "log_workflow",
	ActionUpdateProjectStatus: "update_project_status",
	ActionRetrieveHistory:     "retrieve_history",
	ActionArchiveSession:      "archive_session",
	ActionGenerateReport:      "generate_report",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unrecognized"
}

// ParseAction maps a label to an Action. Unknown labels yield ActionUnrecognized.
func ParseAction(label string) Action {
	label = strings.ToLower(strings.TrimSpace(label))
	for a, name := range actionNames {
		if a != ActionUnrecognized && name == label {
			return a
		}
	}
	return ActionUnrecognized
}

// HistoryType selects what RetrieveHistory looks up.
type HistoryType string

const (
	HistorySession HistoryType = "session"
	HistoryProject HistoryType = "project"
	HistoryUser    HistoryType = "user"
)

// ReportType selects what GenerateReport produces.
type ReportType string

const (
	ReportProjectSummary ReportType = "project_summary"
	ReportUserActivity   ReportType = "user_activity"
)
