package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/catalog"
	"github.com/ShayCichocki/embassy/internal/navigator"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// setupOrchestrator builds an orchestrator over a memory store seeded with ucs.
func setupOrchestrator(t *testing.T, opts []Option, ucs ...*models.UseCase) (*Orchestrator, state.Store) {
	t.Helper()
	store := state.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	for _, uc := range ucs {
		if _, err := store.Create(context.Background(), state.CollectionUseCases, uc); err != nil {
			t.Fatalf("seed use case: %v", err)
		}
	}
	nav := navigator.New(store, catalog.Mock())
	arch := archivist.New(store)
	return New(store, nav, arch, opts...), store
}

func chatDemo() *models.UseCase {
	uc := models.NewUseCase("Chat demo", "azure demo for chat", "alice")
	uc.ResourceTypePreference = []models.ResourceType{models.ResourceDemo}
	return uc
}

func succeed(msg string) Worker {
	return WorkerFunc(func(context.Context, RunContext) (Delta, error) {
		return Delta{Message: msg}, nil
	})
}

func fail(msg string) Worker {
	return WorkerFunc(func(context.Context, RunContext) (Delta, error) {
		return Delta{}, errors.New(msg)
	})
}

func TestCoordinate_CriticalHalt(t *testing.T) {
	o, _ := setupOrchestrator(t, []Option{
		WithWorker(WorkerNavigator, fail("catalog offline")),
		WithWorker(WorkerArchivist, succeed("logged")),
	})

	rc := NewRunContext("uc-1", IntentAnalysis{})
	result, err := o.Coordinate(context.Background(), rc,
		[]WorkerName{WorkerArchivist, WorkerCompliance, WorkerNavigator})
	if err != nil {
		t.Fatalf("Coordinate returned error: %v", err)
	}

	if !result.Halted || result.Success {
		t.Errorf("Halted=%v Success=%v, want halted failure", result.Halted, result.Success)
	}
	if len(result.Results) != 1 || result.Results[0].Worker != WorkerNavigator {
		t.Errorf("results after halt = %+v, want only the navigator", result.Results)
	}
	if !errors.Is(result.Err, ErrCriticalWorker) {
		t.Errorf("Err = %v, want ErrCriticalWorker", result.Err)
	}
	var werr *WorkerError
	if !errors.As(result.Err, &werr) || werr.Worker != WorkerNavigator {
		t.Errorf("Err = %v, want WorkerError for navigator", result.Err)
	}
	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
}

func TestCoordinate_HalfSuccess(t *testing.T) {
	tests := []struct {
		name      string
		workers   []WorkerName
		failing   []WorkerName
		succeeded int
		want      bool
	}{
		{"all succeed", []WorkerName{WorkerNavigator, WorkerArchivist}, nil, 2, true},
		{"two of four", []WorkerName{WorkerNavigator, WorkerCompliance, WorkerCost, WorkerArchivist},
			[]WorkerName{WorkerCompliance, WorkerCost}, 2, true},
		{"two of five floors to two", []WorkerName{WorkerNavigator, WorkerCompliance, WorkerCost, WorkerInfra, WorkerArchivist},
			[]WorkerName{WorkerCompliance, WorkerCost, WorkerInfra}, 2, true},
		{"two of six", []WorkerName{WorkerNavigator, WorkerResearch, WorkerCompliance, WorkerCost, WorkerInfra, WorkerArchivist},
			[]WorkerName{WorkerResearch, WorkerCompliance, WorkerCost, WorkerInfra}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{
				WithWorker(WorkerNavigator, succeed("matched")),
				WithWorker(WorkerArchivist, succeed("logged")),
			}
			for _, w := range tt.failing {
				opts = append(opts, WithWorker(w, fail("unavailable")))
			}
			o, _ := setupOrchestrator(t, opts)

			result, err := o.Coordinate(context.Background(), NewRunContext("uc-1", IntentAnalysis{}), tt.workers)
			if err != nil {
				t.Fatalf("Coordinate returned error: %v", err)
			}
			if result.Halted {
				t.Error("non-critical failures halted the run")
			}
			if len(result.Results) != len(tt.workers) {
				t.Errorf("ran %d workers, want %d", len(result.Results), len(tt.workers))
			}
			if result.Succeeded != tt.succeeded || result.Success != tt.want {
				t.Errorf("Succeeded=%d Success=%v, want %d/%v", result.Succeeded, result.Success, tt.succeeded, tt.want)
			}
			if last := result.Results[len(result.Results)-1]; last.Worker != WorkerArchivist {
				t.Errorf("last worker = %s, want archivist", last.Worker)
			}
		})
	}
}

func TestCoordinate_LaterWorkersSeeEarlierOutput(t *testing.T) {
	match := models.NewResourceMatch("uc-1", navigator.AgentName)
	var seen *models.ResourceMatch
	var seenFinding string

	o, _ := setupOrchestrator(t, []Option{
		WithWorker(WorkerNavigator, WorkerFunc(func(context.Context, RunContext) (Delta, error) {
			return Delta{Match: match, Message: "found 4"}, nil
		})),
		WithWorker(WorkerCompliance, WorkerFunc(func(_ context.Context, rc RunContext) (Delta, error) {
			seen = rc.Match()
			seenFinding, _ = rc.Finding(WorkerNavigator)
			return Delta{Message: "reviewed"}, nil
		})),
		WithWorker(WorkerArchivist, succeed("logged")),
	})

	result, err := o.Coordinate(context.Background(), NewRunContext("uc-1", IntentAnalysis{}),
		[]WorkerName{WorkerCompliance, WorkerArchivist, WorkerNavigator})
	if err != nil {
		t.Fatalf("Coordinate returned error: %v", err)
	}
	if seen != match || seenFinding != "found 4" {
		t.Errorf("compliance worker saw match=%v finding=%q", seen, seenFinding)
	}
	if steps := result.Context.Steps(); len(steps) != 3 {
		t.Errorf("recorded %d steps, want 3", len(steps))
	}
}

func TestCoordinate_UnknownAndPanickingWorkers(t *testing.T) {
	o, _ := setupOrchestrator(t, []Option{
		WithWorker(WorkerNavigator, succeed("matched")),
		WithWorker(WorkerArchivist, succeed("logged")),
		WithWorker(WorkerCost, WorkerFunc(func(context.Context, RunContext) (Delta, error) {
			panic("boom")
		})),
	})

	result, err := o.Coordinate(context.Background(), NewRunContext("uc-1", IntentAnalysis{}),
		[]WorkerName{WorkerNavigator, WorkerName("TranslatorAgent"), WorkerCost, WorkerArchivist})
	if err != nil {
		t.Fatalf("Coordinate returned error: %v", err)
	}
	if result.Halted || result.Succeeded != 2 || !result.Success {
		t.Errorf("result = %+v", result)
	}
	for _, r := range result.Results {
		switch r.Worker {
		case WorkerCost:
			if r.Success || !strings.Contains(r.Message, "panic") {
				t.Errorf("panicking worker result = %+v", r)
			}
		case WorkerName("TranslatorAgent"):
			if r.Success || !strings.Contains(r.Message, "not implemented") {
				t.Errorf("unknown worker result = %+v", r)
			}
		}
	}
}

func TestCoordinate_Placeholders(t *testing.T) {
	uc := chatDemo()
	o, _ := setupOrchestrator(t, nil, uc)

	result, err := o.Coordinate(context.Background(), NewRunContext(uc.ID, Analyze(uc)),
		[]WorkerName{WorkerNavigator, WorkerCompliance, WorkerArchivist})
	if err != nil {
		t.Fatalf("Coordinate returned error: %v", err)
	}
	if !result.Success || result.Succeeded != 3 {
		t.Fatalf("result = %+v", result)
	}
	if !result.Results[1].Placeholder {
		t.Errorf("compliance worker not marked placeholder: %+v", result.Results[1])
	}
	if result.Context.Match() == nil {
		t.Error("navigator match not merged into the context")
	}
}

func TestCoordinate_Empty(t *testing.T) {
	o, _ := setupOrchestrator(t, nil)
	var verr *state.ValidationError
	if _, err := o.Coordinate(context.Background(), NewRunContext("uc-1", IntentAnalysis{}), nil); !errors.As(err, &verr) {
		t.Errorf("empty coordination error = %v, want ValidationError", err)
	}
}

func TestCoordinate_Events(t *testing.T) {
	emitter := NewEventEmitter(16, nil)
	o, _ := setupOrchestrator(t, []Option{
		WithEmitter(emitter),
		WithWorker(WorkerNavigator, fail("down")),
	})

	if _, err := o.Coordinate(context.Background(), NewRunContext("uc-1", IntentAnalysis{}),
		[]WorkerName{WorkerNavigator, WorkerArchivist}); err != nil {
		t.Fatalf("Coordinate returned error: %v", err)
	}
	emitter.Close()

	var got []EventType
	for ev := range emitter.Events() {
		got = append(got, ev.Type)
	}
	want := []EventType{EventWorkerStarted, EventWorkerFailed, EventCoordinationHalted}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRunWorkflow(t *testing.T) {
	ctx := context.Background()
	uc := chatDemo()
	o, store := setupOrchestrator(t, nil, uc)

	result, err := o.RunWorkflow(ctx, uc.ID)
	if err != nil {
		t.Fatalf("RunWorkflow failed: %v", err)
	}

	if result.Match == nil || len(result.Match.Resources) == 0 {
		t.Fatal("workflow produced no resource match")
	}
	if result.Match.Resources[0].Title != "Azure OpenAI Chat Demo" {
		t.Errorf("top resource = %q", result.Match.Resources[0].Title)
	}

	project, _ := state.Get[models.Project](ctx, store, state.CollectionProjects, result.ProjectID())
	if project == nil {
		t.Fatal("project not stored")
	}
	if project.CurrentPhase != models.PhaseResourceMatching {
		t.Errorf("project phase = %q", project.CurrentPhase)
	}
	if !strings.Contains(project.StatusNotes, "Found") {
		t.Errorf("status notes = %q", project.StatusNotes)
	}
	if len(project.Activity) != 2 || project.Activity[1].Agent != archivist.AgentName {
		t.Errorf("project activity = %+v", project.Activity)
	}

	stored, _ := state.Get[models.UseCase](ctx, store, state.CollectionUseCases, uc.ID)
	if stored.Status != models.UseCaseMatched {
		t.Errorf("use case status = %q, want matched", stored.Status)
	}

	if result.Log == nil || !result.Log.Success || len(result.Log.Steps) != 3 {
		t.Errorf("workflow log = %+v", result.Log)
	}
	names := []string{StepIntentAnalysis, StepResourceMatching, StepProjectCreation}
	for i, s := range result.Steps {
		if i < len(names) && s.Name != names[i] {
			t.Errorf("step %d = %q, want %q", i, s.Name, names[i])
		}
	}
}

func TestRunWorkflow_RerunReusesProject(t *testing.T) {
	ctx := context.Background()
	uc := chatDemo()
	o, store := setupOrchestrator(t, nil, uc)

	first, err := o.RunWorkflow(ctx, uc.ID)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := o.RunWorkflow(ctx, uc.ID)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if first.ProjectID() != second.ProjectID() {
		t.Error("re-run created a second project")
	}
	projects, _ := state.UserProjects(ctx, store, "alice")
	if len(projects) != 1 {
		t.Errorf("user has %d projects, want 1", len(projects))
	}
}

func TestRunWorkflow_Urgent(t *testing.T) {
	uc := chatDemo()
	uc.Constraints.Timeline = "need this ASAP"
	o, _ := setupOrchestrator(t, nil, uc)

	result, err := o.RunWorkflow(context.Background(), uc.ID)
	if err != nil {
		t.Fatalf("RunWorkflow failed: %v", err)
	}
	if result.Analysis.Priority != PriorityHigh || !result.Analysis.Expedited() {
		t.Errorf("analysis = %+v", result.Analysis)
	}
	bom := result.Match.BOM
	if last := bom[len(bom)-1]; last.Item != navigator.ExpeditedItem.Item {
		t.Errorf("last BOM item = %q, want %q", last.Item, navigator.ExpeditedItem.Item)
	}
}

func TestRunWorkflow_ArchivalFailureIsNotEscalated(t *testing.T) {
	uc := chatDemo()
	o, _ := setupOrchestrator(t, []Option{WithWorker(WorkerArchivist, fail("disk full"))}, uc)

	result, err := o.RunWorkflow(context.Background(), uc.ID)
	if err != nil {
		t.Fatalf("RunWorkflow escalated an archival failure: %v", err)
	}
	if result.Log != nil {
		t.Error("Log set although archival failed")
	}
	if result.Project == nil {
		t.Error("project missing")
	}
}

func TestRunWorkflow_Errors(t *testing.T) {
	uc := chatDemo()
	o, _ := setupOrchestrator(t, []Option{WithWorker(WorkerNavigator, fail("catalog offline"))}, uc)
	ctx := context.Background()

	if _, err := o.RunWorkflow(ctx, uc.ID); !errors.Is(err, ErrCriticalWorker) {
		t.Errorf("navigator failure error = %v, want ErrCriticalWorker", err)
	}
	if _, err := o.RunWorkflow(ctx, "missing"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("missing use case error = %v, want ErrNotFound", err)
	}
	var verr *state.ValidationError
	if _, err := o.RunWorkflow(ctx, ""); !errors.As(err, &verr) {
		t.Errorf("empty id error = %v, want ValidationError", err)
	}
}

func TestProcess(t *testing.T) {
	uc := chatDemo()
	o, _ := setupOrchestrator(t, nil, uc)
	ctx := context.Background()

	tests := []struct {
		name     string
		req      Request
		wantOK   bool
		wantNext string
	}{
		{"analyze", Request{Action: ActionAnalyzeIntent, UseCaseID: uc.ID}, true, "spawn_agents"},
		{"analyze missing", Request{Action: ActionAnalyzeIntent, UseCaseID: "nope"}, false, "error"},
		{"navigator", Request{Action: ActionSpawnNavigator, UseCaseID: uc.ID}, true, "process_navigation_results"},
		{"create project", Request{Action: ActionCreateProject, UseCaseID: uc.ID}, true, "project_created"},
		{"coordinate", Request{Action: ActionCoordinateAgents, UseCaseID: uc.ID}, true, "coordination_complete"},
		{"coordinate explicit", Request{Action: ActionCoordinateAgents, UseCaseID: uc.ID,
			Workers: []WorkerName{WorkerNavigator, WorkerCost, WorkerArchivist}}, true, "coordination_complete"},
		{"workflow", Request{Action: ActionRunWorkflow, UseCaseID: uc.ID}, true, "present_results"},
		{"unrecognized", Request{Action: ParseAction("launch_rockets")}, false, "analyze_intent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := o.Process(ctx, tt.req)
			if resp.Success != tt.wantOK || resp.NextAction != tt.wantNext {
				t.Errorf("Process() = %v/%q (%s), want %v/%q", resp.Success, resp.NextAction, resp.Message, tt.wantOK, tt.wantNext)
			}
			if resp.Agent != AgentName {
				t.Errorf("Agent = %q", resp.Agent)
			}
		})
	}
}
