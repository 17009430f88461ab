package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Footer renders the status bar and keyboard hints.
type Footer struct {
	awaiting    string
	activity    string
	busy        bool
	success     bool
	sessionDone bool
	turns       int
	width       int

	// Styles
	successStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	busyStyle      lipgloss.Style
	hintStyle      lipgloss.Style
	separatorStyle lipgloss.Style
}

// NewFooter creates a new Footer instance.
func NewFooter() *Footer {
	return &Footer{
		success: true,

		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")).
			Bold(true),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		busyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),

		hintStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		separatorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("236")),
	}
}

// SetState records the input the conversation waits for and whether the
// last turn was understood.
func (f *Footer) SetState(awaiting string, success bool) {
	f.awaiting = awaiting
	f.success = success
	f.turns++
}

// SetBusy marks a turn as running.
func (f *Footer) SetBusy(busy bool) {
	f.busy = busy
	if !busy {
		f.activity = ""
	}
}

// SetActivity shows the latest workflow progress while busy.
func (f *Footer) SetActivity(text string) {
	f.activity = text
}

// SetSessionDone marks the session as archived.
func (f *Footer) SetSessionDone(done bool) {
	f.sessionDone = done
}

// SetWidth sets the footer width.
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// View renders the footer.
func (f *Footer) View() string {
	var left string
	switch {
	case f.sessionDone:
		left = f.successStyle.Render("✓ session archived")
	case f.busy && f.activity != "":
		left = f.busyStyle.Render("⏳ " + f.activity)
	case f.busy:
		left = f.busyStyle.Render("⏳ working...")
	case !f.success:
		left = f.errorStyle.Render("? " + f.awaiting)
	case f.awaiting != "":
		left = f.hintStyle.Render(fmt.Sprintf("%s · turn %d", f.awaiting, f.turns))
	}

	right := f.keyboardHints()
	sep := f.separatorStyle.Render(" │ ")
	if left != "" {
		return left + sep + right
	}
	return right
}

func (f *Footer) keyboardHints() string {
	if f.sessionDone {
		return f.hintStyle.Render("Press any key to exit")
	}
	return f.hintStyle.Render("enter send │ pgup/pgdn scroll │ ctrl+c quit")
}
