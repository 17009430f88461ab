// Package orchestrator turns a captured use case into a coordinated run of
// workers.
//
// The orchestrator package provides:
//   - Intent analysis: classifying a use case by complexity and priority and
//     choosing the workers it needs
//   - Coordination: running workers one at a time in priority order, folding
//     each worker's output into an immutable run context
//   - The end-to-end workflow: analyze, match resources, create the project,
//     and log the run through the archivist
//
// Example usage:
//
//	orch := orchestrator.New(store, nav, arch, orchestrator.WithLogger(log))
//	result, err := orch.RunWorkflow(ctx, useCase.ID)
package orchestrator
