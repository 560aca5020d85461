package tui

import (
	huh "github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// NewHuhTheme returns the base huh theme recolored with the palette above.
func NewHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(subtle)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(primary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(success)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(failure)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(failure)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(lipgloss.Color("#FFFFFF")).Background(primary)

	t.Blurred.Title = t.Blurred.Title.Foreground(subtle)

	return t
}
