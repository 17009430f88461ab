package orchestrator

import (
	"time"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventWorkerStarted indicates a worker has been invoked.
	EventWorkerStarted EventType = "worker_started"
	// EventWorkerCompleted indicates a worker finished successfully.
	EventWorkerCompleted EventType = "worker_completed"
	// EventWorkerFailed indicates a worker returned an error.
	EventWorkerFailed EventType = "worker_failed"
	// EventCoordinationHalted indicates a critical worker failed and the run stopped.
	EventCoordinationHalted EventType = "coordination_halted"
	// EventStepCompleted indicates one workflow step finished, successfully or not.
	EventStepCompleted EventType = "step_completed"
	// EventWorkflowDone indicates the end-to-end workflow returned.
	EventWorkflowDone EventType = "workflow_done"
)

// Event represents something the orchestrator did. Front ends use these to
// show progress while a run is in flight.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// UseCaseID is the use case the run is for.
	UseCaseID string
	// Worker is the related worker, if any.
	Worker WorkerName
	// Step is the workflow step name, for step events.
	Step string
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
