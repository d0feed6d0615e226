package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the picker.
type Theme struct {
	Title    lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
}

// DefaultTheme is the default picker theme.
var DefaultTheme = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2A9D8F")).
		MarginBottom(1),
	Cursor: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2A9D8F")).
		Bold(true),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#52B788")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
}
