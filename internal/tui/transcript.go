package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Speaker identifies who wrote a transcript entry.
type Speaker int

const (
	SpeakerUser Speaker = iota
	SpeakerConcierge
	SpeakerActivity
)

// Entry is one block of the transcript.
type Entry struct {
	Speaker Speaker
	Text    string
	// Failed marks a concierge reply to input it did not understand.
	Failed bool
}

// Transcript renders the conversation so far.
type Transcript struct {
	entries []Entry
	maxSize int

	userStyle      lipgloss.Style
	conciergeStyle lipgloss.Style
	failedStyle    lipgloss.Style
	activityStyle  lipgloss.Style
	bodyStyle      lipgloss.Style
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		maxSize: 500,

		userStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true),

		conciergeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true),

		failedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),

		activityStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),

		bodyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingLeft(2),
	}
}

// Add appends an entry, dropping the oldest once the transcript is full.
func (t *Transcript) Add(e Entry) {
	t.entries = append(t.entries, e)
	if len(t.entries) > t.maxSize {
		t.entries = t.entries[len(t.entries)-t.maxSize:]
	}
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Last returns the most recent entry.
func (t *Transcript) Last() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Render lays the transcript out for the given width.
func (t *Transcript) Render(width int) string {
	body := t.bodyStyle
	if width > 4 {
		body = body.Width(width - 2)
	}

	var blocks []string
	for _, e := range t.entries {
		switch e.Speaker {
		case SpeakerUser:
			blocks = append(blocks, t.userStyle.Render("You")+"\n"+body.Render(e.Text))
		case SpeakerConcierge:
			label := t.conciergeStyle.Render("Concierge")
			if e.Failed {
				label = t.failedStyle.Render("Concierge")
			}
			blocks = append(blocks, label+"\n"+body.Render(e.Text))
		case SpeakerActivity:
			blocks = append(blocks, t.activityStyle.Render("  · "+e.Text))
		}
	}
	return strings.Join(blocks, "\n\n")
}
