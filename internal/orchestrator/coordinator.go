package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// ErrCriticalWorker is matched by errors.Is when a critical worker failed.
var ErrCriticalWorker = errors.New("critical worker failed")

// WorkerError is a failure of one worker.
type WorkerError struct {
	Worker WorkerName
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %s: %v", e.Worker, e.Err)
}

// Unwrap exposes the cause, plus ErrCriticalWorker for critical workers.
func (e *WorkerError) Unwrap() []error {
	if e.Worker.IsCritical() {
		return []error{ErrCriticalWorker, e.Err}
	}
	return []error{e.Err}
}

// WorkerResult is the outcome of one worker in a coordination run.
type WorkerResult struct {
	Worker      WorkerName `json:"agent"`
	Success     bool       `json:"success"`
	Message     string     `json:"message"`
	Placeholder bool       `json:"placeholder,omitempty"`
}

// CoordinationResult aggregates a coordination run.
type CoordinationResult struct {
	// Results holds one entry per worker that ran, in run order. A halted
	// run has no entries after the failing worker.
	Results   []WorkerResult
	Succeeded int
	// Total is the number of requested workers, including any never reached.
	Total int
	// Success is true when at least half of the requested workers
	// succeeded (integer floor) and no critical worker failed.
	Success bool
	// Halted is set when a critical worker failed or ctx was cancelled.
	Halted bool
	// Err is the cause of a halt.
	Err error
	// Context is the run context after the last merged worker.
	Context RunContext
}

// Message summarises the run for people.
func (r *CoordinationResult) Message() string {
	msg := fmt.Sprintf("Agent coordination completed. %d/%d agents succeeded.", r.Succeeded, r.Total)
	if r.Halted {
		msg = fmt.Sprintf("Agent coordination halted. %d/%d agents succeeded.", r.Succeeded, r.Total)
	}
	return msg
}

// Coordinate runs the named workers one at a time in priority order. Each
// successful worker's delta is merged into the context seen by the next.
// A failing critical worker stops the run; other failures are recorded and
// the run continues.
func (o *Orchestrator) Coordinate(ctx context.Context, rc RunContext, names []WorkerName) (*CoordinationResult, error) {
	if len(names) == 0 {
		return nil, &state.ValidationError{Reason: "no agents specified for coordination"}
	}

	result := &CoordinationResult{Total: len(names)}
	for _, name := range ExecutionOrder(names) {
		if err := ctx.Err(); err != nil {
			result.Halted = true
			result.Err = fmt.Errorf("coordination cancelled: %w", err)
			break
		}

		o.emitter.Emit(Event{Type: EventWorkerStarted, UseCaseID: rc.UseCaseID, Worker: name})
		delta, err := o.runWorker(ctx, name, rc)

		wr := WorkerResult{Worker: name, Success: err == nil, Placeholder: delta.Placeholder}
		if err != nil {
			wr.Message = fmt.Sprintf("Execution failed: %v", err)
		} else {
			wr.Message = delta.Message
			result.Succeeded++
			rc = rc.Merge(name, delta)
		}
		rc = rc.Record(models.WorkflowStep{
			Name:    string(name),
			Agent:   string(name),
			Success: wr.Success,
			Message: wr.Message,
		})
		result.Results = append(result.Results, wr)

		if err == nil {
			o.emitter.Emit(Event{Type: EventWorkerCompleted, UseCaseID: rc.UseCaseID, Worker: name, Message: wr.Message})
			continue
		}

		werr := &WorkerError{Worker: name, Err: err}
		o.emitter.Emit(Event{Type: EventWorkerFailed, UseCaseID: rc.UseCaseID, Worker: name, Error: werr})
		if name.IsCritical() {
			o.log.Warn("critical worker failed, halting coordination",
				"use_case_id", rc.UseCaseID, "worker", string(name), "error", err)
			o.emitter.Emit(Event{Type: EventCoordinationHalted, UseCaseID: rc.UseCaseID, Worker: name, Error: werr})
			result.Halted = true
			result.Err = werr
			break
		}
		o.log.Info("worker failed", "use_case_id", rc.UseCaseID, "worker", string(name), "error", err)
	}

	result.Context = rc
	result.Success = !result.Halted && result.Succeeded >= result.Total/2
	o.log.Info("coordination finished",
		"use_case_id", rc.UseCaseID,
		"succeeded", result.Succeeded,
		"total", result.Total,
		"success", result.Success,
	)
	return result, nil
}

// runWorker invokes one worker, turning a panic into an error.
func (o *Orchestrator) runWorker(ctx context.Context, name WorkerName, rc RunContext) (delta Delta, err error) {
	w, ok := o.workers[name]
	if !ok {
		return Delta{}, fmt.Errorf("agent %s not implemented yet", name)
	}
	defer func() {
		if r := recover(); r != nil {
			delta = Delta{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.Run(ctx, rc)
}
