package orchestrator

import (
	"time"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// Delta is what one worker contributes to a run.
type Delta struct {
	// ProjectID, when set, replaces the run's project.
	ProjectID string
	// Match, when set, replaces the run's resource match.
	Match *models.ResourceMatch
	// Message is the worker's one-line outcome.
	Message string
	// WorkflowLog is set by the archivist worker.
	WorkflowLog *models.WorkflowLog
	// Placeholder marks output from a worker with no real implementation.
	Placeholder bool
}

// RunContext is the state shared by the workers of one run. It is a value:
// Merge and Record return a new context and never modify the receiver, so a
// context handed to a worker cannot change underneath it.
type RunContext struct {
	UseCaseID string
	ProjectID string
	Analysis  IntentAnalysis

	match    *models.ResourceMatch
	steps    []models.WorkflowStep
	findings map[WorkerName]string
	started  time.Time
}

// NewRunContext starts a run for useCaseID.
func NewRunContext(useCaseID string, analysis IntentAnalysis) RunContext {
	return RunContext{
		UseCaseID: useCaseID,
		Analysis:  analysis,
		started:   time.Now(),
	}
}

// Match returns the latest resource match, or nil.
func (rc RunContext) Match() *models.ResourceMatch {
	return rc.match
}

// Steps returns a copy of the steps recorded so far.
func (rc RunContext) Steps() []models.WorkflowStep {
	return append([]models.WorkflowStep(nil), rc.steps...)
}

// Finding returns the message a worker contributed.
func (rc RunContext) Finding(w WorkerName) (string, bool) {
	msg, ok := rc.findings[w]
	return msg, ok
}

// Elapsed is the time since the run started.
func (rc RunContext) Elapsed() time.Duration {
	if rc.started.IsZero() {
		return 0
	}
	return time.Since(rc.started)
}

// WithProject returns a copy of rc bound to projectID.
func (rc RunContext) WithProject(projectID string) RunContext {
	rc.ProjectID = projectID
	return rc
}

// Record returns a copy of rc with step appended.
func (rc RunContext) Record(step models.WorkflowStep) RunContext {
	steps := make([]models.WorkflowStep, len(rc.steps), len(rc.steps)+1)
	copy(steps, rc.steps)
	rc.steps = append(steps, step)
	return rc
}

// Merge returns a copy of rc with d folded in under worker w.
func (rc RunContext) Merge(w WorkerName, d Delta) RunContext {
	if d.ProjectID != "" {
		rc.ProjectID = d.ProjectID
	}
	if d.Match != nil {
		rc.match = d.Match
	}
	findings := make(map[WorkerName]string, len(rc.findings)+1)
	for k, v := range rc.findings {
		findings[k] = v
	}
	findings[w] = d.Message
	rc.findings = findings
	return rc
}
