package orchestrator

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/logging"
	"github.com/ShayCichocki/embassy/internal/navigator"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// AgentName identifies the orchestrator in logs and activity entries.
const AgentName = "OrchestratorAgent"

// Workflow step names, in run order.
const (
	StepIntentAnalysis   = "intent_analysis"
	StepResourceMatching = "resource_matching"
	StepProjectCreation  = "project_creation"
)

// Orchestrator analyzes use cases and coordinates the workers that serve them.
type Orchestrator struct {
	store   state.Store
	workers map[WorkerName]Worker
	emitter *EventEmitter
	log     *logging.Logger
}

// New creates an Orchestrator. The navigator and archivist back the two
// critical workers; the specialists run as placeholders unless replaced
// with WithWorker.
func New(store state.Store, nav *navigator.Navigator, arch *archivist.Archivist, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store: store,
		workers: map[WorkerName]Worker{
			WorkerNavigator:  navigatorWorker{nav: nav},
			WorkerArchivist:  archivistWorker{arch: arch},
			WorkerResearch:   placeholderWorker{name: WorkerResearch},
			WorkerCompliance: placeholderWorker{name: WorkerCompliance},
			WorkerCost:       placeholderWorker{name: WorkerCost},
			WorkerInfra:      placeholderWorker{name: WorkerInfra},
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AnalyzeIntent loads a use case and classifies it.
func (o *Orchestrator) AnalyzeIntent(ctx context.Context, useCaseID string) (*models.UseCase, IntentAnalysis, error) {
	uc, err := o.loadUseCase(ctx, useCaseID)
	if err != nil {
		return nil, IntentAnalysis{}, err
	}
	analysis := Analyze(uc)
	o.log.Info("intent analysed",
		"use_case_id", uc.ID,
		"complexity", string(analysis.Complexity),
		"priority", string(analysis.Priority),
		"workers", len(analysis.RequiredWorkers),
	)
	return uc, analysis, nil
}

// CoordinateUseCase analyzes a use case and coordinates its required workers.
func (o *Orchestrator) CoordinateUseCase(ctx context.Context, useCaseID string) (*CoordinationResult, error) {
	uc, analysis, err := o.AnalyzeIntent(ctx, useCaseID)
	if err != nil {
		return nil, err
	}
	rc := NewRunContext(uc.ID, analysis)
	if p, err := state.ProjectForUseCase(ctx, o.store, uc.ID); err == nil && p != nil {
		rc = rc.WithProject(p.ID)
	}
	return o.Coordinate(ctx, rc, analysis.RequiredWorkers)
}

// CreateProject creates the project for uc, or moves an existing one into
// resource matching, and advances the use case to matched.
func (o *Orchestrator) CreateProject(ctx context.Context, uc *models.UseCase, matches int) (*models.Project, error) {
	notes := fmt.Sprintf("Project created from use case. Found %d matching resources.", matches)

	project, err := state.ProjectForUseCase(ctx, o.store, uc.ID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	if project == nil {
		project = models.NewProject(uc)
		project.CurrentPhase = models.PhaseResourceMatching
		project.StatusNotes = notes
		project.Log(models.NewActivity(AgentName, "project_created",
			fmt.Sprintf("Created project from use case %s", uc.ID)))
		if _, err := o.store.Create(ctx, state.CollectionProjects, project); err != nil {
			o.log.Error("creating project failed", "use_case_id", uc.ID, "error", err)
			return nil, fmt.Errorf("create project: %w", err)
		}
	} else {
		if project.CurrentPhase == models.PhaseIntake {
			project.CurrentPhase = models.PhaseResourceMatching
		}
		project.StatusNotes = fmt.Sprintf("Resources re-matched. Found %d matching resources.", matches)
		project.Log(models.NewActivity(AgentName, "project_updated",
			fmt.Sprintf("Re-ran resource matching for use case %s", uc.ID)))
		if _, err := o.store.Update(ctx, state.CollectionProjects, project.ID, project); err != nil {
			o.log.Error("updating project failed", "project_id", project.ID, "error", err)
			return nil, fmt.Errorf("update project: %w", err)
		}
	}

	if uc.Status.CanTransition(models.UseCaseMatched) {
		if uc.Status != models.UseCaseMatched {
			_ = uc.Advance(models.UseCaseMatched)
			if _, err := o.store.Update(ctx, state.CollectionUseCases, uc.ID, uc); err != nil {
				o.log.Warn("advancing use case failed", "use_case_id", uc.ID, "error", err)
			}
		}
	} else {
		o.log.Debug("use case already past matched", "use_case_id", uc.ID, "status", string(uc.Status))
	}

	o.log.Info("project ready", "project_id", project.ID, "use_case_id", uc.ID, "matches", matches)
	return project, nil
}

// WorkflowResult is everything the end-to-end workflow produced.
type WorkflowResult struct {
	UseCase  *models.UseCase
	Analysis IntentAnalysis
	Match    *models.ResourceMatch
	// Project is nil when project creation failed.
	Project *models.Project
	Steps   []models.WorkflowStep
	// Log is nil when archival failed.
	Log *models.WorkflowLog
}

// ProjectID returns the project's id, or "".
func (r *WorkflowResult) ProjectID() string {
	if r.Project == nil {
		return ""
	}
	return r.Project.ID
}

// RunWorkflow analyzes a use case, matches resources, creates its project
// and logs the run. Failures of analysis or matching are returned; a failed
// project creation is recorded as a failed step, and a failed archival is
// only logged.
func (o *Orchestrator) RunWorkflow(ctx context.Context, useCaseID string) (*WorkflowResult, error) {
	uc, analysis, err := o.AnalyzeIntent(ctx, useCaseID)
	if err != nil {
		return nil, err
	}
	rc := NewRunContext(uc.ID, analysis)
	rc = o.step(rc, StepIntentAnalysis, AgentName, nil,
		fmt.Sprintf("Identified %s (complexity %s, priority %s)", analysis.IntentType, analysis.Complexity, analysis.Priority))

	delta, err := o.runWorker(ctx, WorkerNavigator, rc)
	if err != nil {
		o.step(rc, StepResourceMatching, string(WorkerNavigator), err, "")
		o.emitter.Emit(Event{Type: EventWorkflowDone, UseCaseID: uc.ID, Error: err})
		return nil, &WorkerError{Worker: WorkerNavigator, Err: err}
	}
	rc = rc.Merge(WorkerNavigator, delta)
	rc = o.step(rc, StepResourceMatching, string(WorkerNavigator), nil, delta.Message)

	result := &WorkflowResult{UseCase: uc, Analysis: analysis, Match: rc.Match()}

	matches := 0
	if m := rc.Match(); m != nil {
		matches = len(m.Resources)
	}
	project, err := o.CreateProject(ctx, uc, matches)
	if err != nil {
		rc = o.step(rc, StepProjectCreation, AgentName, err, "")
	} else {
		result.Project = project
		rc = rc.WithProject(project.ID)
		rc = o.step(rc, StepProjectCreation, AgentName, nil, fmt.Sprintf("Created project %s", project.Title))
	}

	archival, err := o.runWorker(ctx, WorkerArchivist, rc)
	if err != nil {
		o.log.Warn("workflow archival failed", "use_case_id", uc.ID, "error", err)
	} else {
		rc = rc.Merge(WorkerArchivist, archival)
		result.Log = archival.WorkflowLog
	}

	result.Steps = rc.Steps()
	o.emitter.Emit(Event{Type: EventWorkflowDone, UseCaseID: uc.ID, Message: "Complete workflow orchestration successful"})
	return result, nil
}

// step records a workflow step on rc and announces it.
func (o *Orchestrator) step(rc RunContext, name, agent string, err error, msg string) RunContext {
	s := models.WorkflowStep{Name: name, Agent: agent, Success: err == nil, Message: msg}
	if err != nil {
		s.Message = err.Error()
	}
	o.emitter.Emit(Event{Type: EventStepCompleted, UseCaseID: rc.UseCaseID, Step: name, Message: s.Message, Error: err})
	return rc.Record(s)
}

func (o *Orchestrator) loadUseCase(ctx context.Context, id string) (*models.UseCase, error) {
	if id == "" {
		return nil, &state.ValidationError{Collection: state.CollectionUseCases, Reason: "no use case provided for analysis"}
	}
	uc, err := state.Get[models.UseCase](ctx, o.store, state.CollectionUseCases, id)
	if err != nil {
		o.log.Error("loading use case failed", "use_case_id", id, "error", err)
		return nil, fmt.Errorf("load use case: %w", err)
	}
	if uc == nil {
		return nil, fmt.Errorf("use case %s: %w", id, state.ErrNotFound)
	}
	return uc, nil
}
