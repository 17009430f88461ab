package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/embassy/internal/concierge"
)

// Conversation is the session the chat drives.
type Conversation interface {
	Turn(ctx context.Context, input string) concierge.Reply
}

// ReplyMsg carries the concierge's answer to a submitted line.
type ReplyMsg struct {
	Reply concierge.Reply
}

// ChatApp is the bubbletea model for a concierge conversation.
type ChatApp struct {
	ctx  context.Context
	conv Conversation

	header     *Header
	footer     *Footer
	inputField *InputField
	transcript *Transcript
	viewport   viewport.Model

	width    int
	height   int
	busy     bool
	done     bool
	quitting bool
}

// NewChatApp creates a chat over conv, opening with greeting.
func NewChatApp(ctx context.Context, conv Conversation, user string, greeting concierge.Reply) *ChatApp {
	a := &ChatApp{
		ctx:        ctx,
		conv:       conv,
		header:     NewHeader(user),
		footer:     NewFooter(),
		inputField: NewInputField(),
		transcript: NewTranscript(),
		viewport:   viewport.New(80, 20),
	}
	a.addReply(greeting)
	return a
}

// NewChatProgram creates a full-screen program running a ChatApp.
func NewChatProgram(ctx context.Context, conv Conversation, user string, greeting concierge.Reply) (*tea.Program, *ChatApp) {
	app := NewChatApp(ctx, conv, user, greeting)
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	return program, app
}

// Done reports whether the session was archived during the chat.
func (a *ChatApp) Done() bool {
	return a.done
}

// Init implements tea.Model.
func (a *ChatApp) Init() tea.Cmd {
	return a.inputField.Focus()
}

// Update implements tea.Model.
func (a *ChatApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || a.done {
			a.quitting = true
			return a, tea.Quit
		}
		switch msg.String() {
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd
		}
		if a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.inputField, cmd = a.inputField.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateSizes()
		return a, nil

	case InputSubmittedMsg:
		if a.busy || a.done {
			return a, nil
		}
		a.busy = true
		a.footer.SetBusy(true)
		a.transcript.Add(Entry{Speaker: SpeakerUser, Text: msg.Text})
		a.refresh()
		return a, a.turn(msg.Text)

	case ReplyMsg:
		a.busy = false
		a.footer.SetBusy(false)
		a.addReply(msg.Reply)
		if msg.Reply.Done {
			a.done = true
			a.footer.SetSessionDone(true)
			a.inputField.Blur()
		}
		return a, nil

	case ActivityMsg:
		a.footer.SetActivity(msg.Text)
		a.transcript.Add(Entry{Speaker: SpeakerActivity, Text: msg.Text})
		a.refresh()
		return a, nil
	}
	return a, nil
}

// turn runs one conversation turn off the UI goroutine.
func (a *ChatApp) turn(text string) tea.Cmd {
	ctx, conv := a.ctx, a.conv
	return func() tea.Msg {
		return ReplyMsg{Reply: conv.Turn(ctx, text)}
	}
}

func (a *ChatApp) addReply(r concierge.Reply) {
	a.transcript.Add(Entry{Speaker: SpeakerConcierge, Text: r.Message, Failed: !r.Success})
	a.footer.SetState(r.Awaiting.String(), r.Success)
	a.refresh()
}

func (a *ChatApp) updateSizes() {
	a.header.SetWidth(a.width)
	a.footer.SetWidth(a.width)
	a.inputField.SetWidth(a.width)

	h := a.height - a.header.Height() - a.inputField.Height() - 1 // footer
	if h < 3 {
		h = 3
	}
	a.viewport.Width = a.width
	a.viewport.Height = h
	a.refresh()
}

// refresh re-renders the transcript and keeps the newest entry in view.
func (a *ChatApp) refresh() {
	a.viewport.SetContent(a.transcript.Render(a.viewport.Width))
	a.viewport.GotoBottom()
}

// View implements tea.Model.
func (a *ChatApp) View() string {
	if a.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		a.header.View(),
		a.viewport.View(),
		a.inputField.View(),
		a.footer.View(),
	)
}
