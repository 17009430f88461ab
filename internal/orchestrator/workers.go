package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/navigator"
)

// WorkerName identifies a worker the orchestrator can run.
type WorkerName string

const (
	WorkerNavigator  WorkerName = navigator.AgentName
	WorkerResearch   WorkerName = "ResearchAgent"
	WorkerCompliance WorkerName = "ComplianceAgent"
	WorkerCost       WorkerName = "CostAgent"
	WorkerInfra      WorkerName = "InfraAgent"
	WorkerArchivist  WorkerName = archivist.AgentName
	// WorkerUnrecognized is any name that is not a known worker.
	WorkerUnrecognized WorkerName = "unrecognized"
)

// KnownWorkers lists every recognized worker in execution order.
var KnownWorkers = []WorkerName{
	WorkerNavigator, WorkerResearch, WorkerCompliance, WorkerCost, WorkerInfra, WorkerArchivist,
}

// unknownPriority places unrecognized workers among the specialists.
const unknownPriority = 5

var workerPriorities = map[WorkerName]int{
	WorkerNavigator:  1,
	WorkerResearch:   2,
	WorkerCompliance: 3,
	WorkerCost:       4,
	WorkerInfra:      5,
	WorkerArchivist:  9,
}

// ParseWorkerName matches label case-insensitively against the known workers.
func ParseWorkerName(label string) WorkerName {
	label = strings.TrimSpace(label)
	for _, w := range KnownWorkers {
		if strings.EqualFold(label, string(w)) {
			return w
		}
	}
	return WorkerUnrecognized
}

// Priority returns the worker's run position; lower runs first.
func (w WorkerName) Priority() int {
	if p, ok := workerPriorities[w]; ok {
		return p
	}
	return unknownPriority
}

// IsCritical reports whether a failure of w halts coordination.
func (w WorkerName) IsCritical() bool {
	return w == WorkerNavigator || w == WorkerArchivist
}

// ExecutionOrder sorts names by priority. Equal priorities keep their input order.
func ExecutionOrder(names []WorkerName) []WorkerName {
	ordered := append([]WorkerName(nil), names...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	return ordered
}

// Worker performs one unit of an orchestration run. It reads the context
// built so far and returns what it adds to it.
type Worker interface {
	Run(ctx context.Context, rc RunContext) (Delta, error)
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc func(ctx context.Context, rc RunContext) (Delta, error)

// Run implements Worker.
func (f WorkerFunc) Run(ctx context.Context, rc RunContext) (Delta, error) {
	return f(ctx, rc)
}

// navigatorWorker matches the run's use case against the catalog.
type navigatorWorker struct {
	nav *navigator.Navigator
}

func (w navigatorWorker) Run(ctx context.Context, rc RunContext) (Delta, error) {
	result, err := w.nav.SearchResources(ctx, rc.UseCaseID)
	if err != nil {
		return Delta{}, err
	}
	return Delta{
		Match:   result.Match,
		Message: result.Match.Notes,
	}, nil
}

// archivistWorker records the steps taken so far as a workflow log.
type archivistWorker struct {
	arch *archivist.Archivist
}

func (w archivistWorker) Run(ctx context.Context, rc RunContext) (Delta, error) {
	wl, err := w.arch.LogWorkflow(ctx, archivist.WorkflowRun{
		UseCaseID: rc.UseCaseID,
		ProjectID: rc.ProjectID,
		Steps:     rc.Steps(),
		Duration:  rc.Elapsed(),
	})
	if err != nil {
		return Delta{}, err
	}
	return Delta{Message: wl.Summary, WorkflowLog: wl}, nil
}

// placeholderWorker stands in for a specialist that has no implementation yet.
type placeholderWorker struct {
	name WorkerName
}

func (w placeholderWorker) Run(_ context.Context, _ RunContext) (Delta, error) {
	return Delta{
		Message:     fmt.Sprintf("Agent %s executed (placeholder)", w.name),
		Placeholder: true,
	}, nil
}
