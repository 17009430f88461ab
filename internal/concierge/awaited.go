// Package concierge runs the intake conversation: it greets the user,
// captures a use case field by field or from a free-text description,
// confirms it, hands it to the orchestrator and walks the user through
// the results.
//
// Each reply names the input it expects next (an AwaitedAction). The next
// transition depends only on that label, the raw input and the data
// collected so far, so a conversation can be persisted and resumed at any
// turn.
package concierge

import "strings"

// AwaitedAction is the kind of input the conversation expects next.
type AwaitedAction int

const (
	// AwaitUnrecognized is any label that is not a known state. Input in this
	// state re-prompts without moving, except for a restart.
	AwaitUnrecognized AwaitedAction = iota
	AwaitProjectChoice
	AwaitIntakeMode
	AwaitGuidedField
	AwaitComprehensive
	AwaitConfirmation
	AwaitOrchestration
	AwaitProjectSelect
	AwaitNoProjects
	AwaitResultAction
	AwaitEnded
)

var awaitedLabels = map[AwaitedAction]string{
	AwaitUnrecognized:  "unrecognized",
	AwaitProjectChoice: "project_choice",
	AwaitIntakeMode:    "intake_form",
	AwaitGuidedField:   "guided_intake_field",
	AwaitComprehensive: "process_comprehensive",
	AwaitConfirmation:  "confirm_extraction",
	AwaitOrchestration: "orchestrate",
	AwaitProjectSelect: "select_existing_project",
	AwaitNoProjects:    "handle_no_projects",
	AwaitResultAction:  "handle_resource_selection",
	AwaitEnded:         "ended",
}

func (a AwaitedAction) String() string {
	if s, ok := awaitedLabels[a]; ok {
		return s
	}
	return "unrecognized"
}

// ParseAwaitedAction maps a persisted label back to its state.
func ParseAwaitedAction(label string) AwaitedAction {
	label = strings.ToLower(strings.TrimSpace(label))
	for a, l := range awaitedLabels {
		if a != AwaitUnrecognized && l == label {
			return a
		}
	}
	return AwaitUnrecognized
}
