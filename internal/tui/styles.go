package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#7D56F4")
	success = lipgloss.Color("#04B575")
	failure = lipgloss.Color("#FF0000")
	subtle  = lipgloss.Color("#888888")
)

var (
	// Header styling for steps
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primary).
			Padding(0, 1)

	// Error styling
	ErrorStyle = lipgloss.NewStyle().
			Foreground(failure).
			Bold(true)

	// Success styling
	SuccessStyle = lipgloss.NewStyle().
			Foreground(success).
			Bold(true)

	// Subtle text styling
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	// Process output styling, keyed by phase
	PhaseStyle = lipgloss.NewStyle().
			Foreground(primary)

	StderrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	// Description styling
	DescStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true)
)
