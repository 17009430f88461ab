package tui

import (
	"fmt"

	"github.com/ShayCichocki/embassy/internal/orchestrator"
)

// ActivityMsg carries one line of workflow progress.
type ActivityMsg struct {
	Text string
}

// FormatEvent renders an orchestrator event as a progress line.
func FormatEvent(e orchestrator.Event) string {
	switch e.Type {
	case orchestrator.EventWorkerStarted:
		return fmt.Sprintf("%s started", e.Worker)
	case orchestrator.EventWorkerCompleted:
		return fmt.Sprintf("%s finished", e.Worker)
	case orchestrator.EventWorkerFailed:
		return fmt.Sprintf("%s failed: %v", e.Worker, e.Error)
	case orchestrator.EventCoordinationHalted:
		return fmt.Sprintf("coordination halted after %s failed", e.Worker)
	case orchestrator.EventStepCompleted:
		if e.Error != nil {
			return fmt.Sprintf("%s failed: %v", e.Step, e.Error)
		}
		return fmt.Sprintf("%s done", e.Step)
	case orchestrator.EventWorkflowDone:
		if e.Error != nil {
			return fmt.Sprintf("workflow stopped: %v", e.Error)
		}
		return "workflow complete"
	}
	return string(e.Type)
}
