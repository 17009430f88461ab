package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// Action is the closed set of orchestration requests.
type Action int

const (
	// ActionUnrecognized is any label that is not a known action.
	ActionUnrecognized Action = iota
	ActionAnalyzeIntent
	ActionSpawnNavigator
	ActionCreateProject
	ActionCoordinateAgents
	ActionRunWorkflow
)

var actionNames = map[Action]string{
	ActionUnrecognized:     "unrecognized",
	ActionAnalyzeIntent:    "analyze_intent",
	ActionSpawnNavigator:   "spawn_navigator",
	ActionCreateProject:    "create_project",
	ActionCoordinateAgents: "coordinate_agents",
	ActionRunWorkflow:      "run_workflow",
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

// Request is an orchestration request in collaborator form.
type Request struct {
	Action    Action
	UseCaseID string
	// Workers overrides the analyzed worker set for coordinate_agents.
	Workers []WorkerName
}

// Process runs an orchestration request and reports the outcome as a
// Response. It never returns an error.
func (o *Orchestrator) Process(ctx context.Context, req Request) models.Response {
	switch req.Action {
	case ActionAnalyzeIntent:
		uc, analysis, err := o.AnalyzeIntent(ctx, req.UseCaseID)
		if err != nil {
			return o.failure("Intent analysis failed", err)
		}
		return models.NewResponse(AgentName, true,
			fmt.Sprintf("Intent analysis complete. Identified: %s", analysis.IntentType),
			map[string]any{"use_case_id": uc.ID, "analysis": analysis, "required_agents": analysis.RequiredWorkers},
			"spawn_agents")

	case ActionSpawnNavigator:
		uc, analysis, err := o.AnalyzeIntent(ctx, req.UseCaseID)
		if err != nil {
			return o.failure("Navigator Agent failed", err)
		}
		delta, err := o.runWorker(ctx, WorkerNavigator, NewRunContext(uc.ID, analysis))
		if err != nil {
			return o.failure("Navigator Agent failed", err)
		}
		return models.NewResponse(AgentName, true, "Navigator Agent completed resource matching",
			map[string]any{"resource_match": delta.Match}, "process_navigation_results")

	case ActionCreateProject:
		uc, err := o.loadUseCase(ctx, req.UseCaseID)
		if err != nil {
			return o.failure("Failed to create project", err)
		}
		matches := 0
		if m, err := state.ActiveMatch(ctx, o.store, uc.ID); err == nil && m != nil {
			matches = len(m.Resources)
		}
		project, err := o.CreateProject(ctx, uc, matches)
		if err != nil {
			return o.failure("Failed to create project", err)
		}
		return models.NewResponse(AgentName, true,
			fmt.Sprintf("Successfully created TechHub project: %s", project.Title),
			map[string]any{"project_id": project.ID, "project": project}, "project_created")

	case ActionCoordinateAgents:
		var (
			result *CoordinationResult
			err    error
		)
		if len(req.Workers) > 0 {
			var uc *models.UseCase
			var analysis IntentAnalysis
			uc, analysis, err = o.AnalyzeIntent(ctx, req.UseCaseID)
			if err == nil {
				result, err = o.Coordinate(ctx, NewRunContext(uc.ID, analysis), req.Workers)
			}
		} else {
			result, err = o.CoordinateUseCase(ctx, req.UseCaseID)
		}
		if err != nil {
			return o.failure("Agent coordination failed", err)
		}
		return models.NewResponse(AgentName, result.Success, result.Message(),
			map[string]any{
				"coordination_results": result.Results,
				"successful_agents":    result.Succeeded,
				"total_agents":         result.Total,
			}, "coordination_complete")

	case ActionRunWorkflow:
		result, err := o.RunWorkflow(ctx, req.UseCaseID)
		if err != nil {
			return o.failure("Workflow orchestration failed", err)
		}
		var (
			resources []models.RecommendedResource
			bom       []models.BOMItem
		)
		if result.Match != nil {
			resources, bom = result.Match.Resources, result.Match.BOM
		}
		return models.NewResponse(AgentName, true, "Complete workflow orchestration successful",
			map[string]any{
				"use_case_id":       result.UseCase.ID,
				"project_id":        result.ProjectID(),
				"resource_matches":  resources,
				"generated_bom":     bom,
				"workflow_complete": true,
			}, "present_results")
	}

	return models.NewResponse(AgentName, false,
		fmt.Sprintf("Unknown orchestration action: %s", req.Action), nil, "analyze_intent")
}

// failure turns err into a plain-language message.
func (o *Orchestrator) failure(prefix string, err error) models.Response {
	var verr *state.ValidationError
	switch {
	case errors.As(err, &verr):
		return models.NewResponse(AgentName, false, fmt.Sprintf("%s: %s", prefix, verr.Reason), nil, "error")
	case errors.Is(err, state.ErrNotFound):
		return models.NewResponse(AgentName, false, fmt.Sprintf("%s: %v", prefix, err), nil, "error")
	}
	o.log.Warn(prefix, "error", err)
	return models.NewResponse(AgentName, false, prefix+". Please try again.", nil, "error")
}
