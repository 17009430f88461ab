// Package tui provides the terminal chat front end for the embassy.
//
// The chat shows the conversation with the concierge in a scrollable
// transcript, takes input from a single-line field and shows workflow
// progress from the orchestrator in the footer while a turn is running.
//
// Usage:
//
//	program, app := tui.NewChatProgram(ctx, session, greeting)
//
//	// Forward orchestrator progress
//	go func() {
//	    for e := range emitter.Events() {
//	        program.Send(tui.ActivityMsg{Text: tui.FormatEvent(e)})
//	    }
//	}()
//
//	_, err := program.Run()
//
// Turns run off the UI goroutine, one at a time. Ctrl+C quits at any point;
// once the session is archived any key leaves.
package tui
