package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Header renders the title bar.
type Header struct {
	width int
	user  string
}

// NewHeader creates a new Header.
func NewHeader(user string) *Header {
	return &Header{
		width: 80,
		user:  user,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header.
func (h *Header) View() string {
	colors := []string{"#45B7D1", "#4ECDC4", "#96E6A1"}
	words := []string{"TechHub", "AI", "Embassy"}

	var styled []string
	for i, w := range words {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i])).Bold(true)
		styled = append(styled, style.Render(w))
	}
	title := lipgloss.JoinHorizontal(lipgloss.Top, styled[0], " ", styled[1], " ", styled[2])

	subtitle := "Concierge"
	if h.user != "" {
		subtitle += " · " + h.user
	}
	sub := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Italic(true).
		Render(subtitle)

	return lipgloss.NewStyle().
		Width(h.width).
		Align(lipgloss.Center).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("236")).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, sub))
}

// Height returns the header height in lines.
func (h *Header) Height() int {
	return 3 // title, subtitle, border
}
