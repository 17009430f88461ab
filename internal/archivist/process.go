package archivist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// Request is an archival request in collaborator form. Only the fields the
// action needs are read.
type Request struct {
	Action Action

	SessionID string
	UserID    string
	UseCaseID string
	ProjectID string

	// log_interaction
	Interaction models.Interaction

	// log_workflow
	Steps    []models.WorkflowStep
	Duration time.Duration

	// update_project_status
	Phase       string
	StatusNotes string

	// retrieve_history and generate_report
	HistoryType HistoryType
	ReportType  ReportType
	EntityID    string
	Limit       int
}

// Process runs an archival request and reports the outcome as a Response.
// It never returns an error; failures come back with Success=false.
func (a *Archivist) Process(ctx context.Context, req Request) models.Response {
	switch req.Action {
	case ActionLogInteraction:
		session, err := a.LogInteraction(ctx, InteractionLog{
			SessionID: req.SessionID,
			UserID:    req.UserID,
			UseCaseID: req.UseCaseID,
			ProjectID: req.ProjectID,
			Entry:     req.Interaction,
		})
		if err != nil {
			return a.failure("Failed to log interaction", err)
		}
		return a.success("Interaction logged successfully", map[string]any{
			"session_id":         session.ID,
			"conversation_count": len(session.History),
		}, "logged")

	case ActionLogWorkflow:
		wl, err := a.LogWorkflow(ctx, WorkflowRun{
			UseCaseID: req.UseCaseID,
			ProjectID: req.ProjectID,
			Steps:     req.Steps,
			Duration:  req.Duration,
		})
		if err != nil {
			return a.failure("Failed to log workflow", err)
		}
		return a.success("Workflow logged successfully", map[string]any{
			"workflow_summary": wl,
		}, "workflow_logged")

	case ActionUpdateProjectStatus:
		old, err := a.UpdateProjectStatus(ctx, req.ProjectID, req.Phase, req.StatusNotes)
		if err != nil {
			return a.failure("Failed to update project status", err)
		}
		return a.success(fmt.Sprintf("Project status updated to %s", req.Phase), map[string]any{
			"project_id": req.ProjectID,
			"old_phase":  old,
			"new_phase":  req.Phase,
		}, "status_updated")

	case ActionRetrieveHistory:
		h, err := a.RetrieveHistory(ctx, HistoryQuery{
			Type:     req.HistoryType,
			EntityID: req.EntityID,
			UserID:   req.UserID,
			Limit:    req.Limit,
		})
		if err != nil {
			return a.failure("Could not retrieve history", err)
		}
		return a.success(fmt.Sprintf("Retrieved %s history successfully", h.Type), map[string]any{
			"history": h,
		}, "history_retrieved")

	case ActionArchiveSession:
		rec, err := a.ArchiveSession(ctx, req.SessionID)
		if err != nil {
			return a.failure("Failed to archive session", err)
		}
		return a.success("Session archived successfully", map[string]any{
			"archive_summary": rec,
		}, "archived")

	case ActionGenerateReport:
		r, err := a.GenerateReport(ctx, ReportQuery{
			Type:     req.ReportType,
			EntityID: req.EntityID,
			UserID:   req.UserID,
		})
		if err != nil {
			return a.failure("Could not generate report", err)
		}
		return a.success(fmt.Sprintf("Generated %s report successfully", r.Type), map[string]any{
			"report": r,
		}, "report_generated")
	}

	return models.NewResponse(AgentName, false,
		fmt.Sprintf("Unknown archival action: %s", req.Action), nil, "error")
}

func (a *Archivist) success(msg string, data map[string]any, next string) models.Response {
	return models.NewResponse(AgentName, true, msg, data, next)
}

// failure turns err into a plain-language message.
func (a *Archivist) failure(prefix string, err error) models.Response {
	var verr *state.ValidationError
	switch {
	case errors.As(err, &verr):
		return models.NewResponse(AgentName, false, fmt.Sprintf("%s: %s", prefix, verr.Reason), nil, "error")
	case errors.Is(err, state.ErrNotFound):
		return models.NewResponse(AgentName, false, fmt.Sprintf("%s: %v", prefix, err), nil, "error")
	}
	a.log.Warn(prefix, "error", err)
	return models.NewResponse(AgentName, false, prefix+". Please try again.", nil, "error")
}
