package create

import (
	"fmt"
	"strings"

	"github.com/tacticalyash/IDEStudio/internal/build"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/process"
	"github.com/tacticalyash/IDEStudio/internal/project"
	"github.com/tacticalyash/IDEStudio/internal/tui"
)

// Summary describes what a run of the new command did.
type Summary struct {
	Details     models.ProjectDetails
	Files       project.Files
	ProjectFile string
	Warnings    []string
	SaveErr     error
}

// RenderSummary renders the summary shown once the project is closed.
func RenderSummary(s Summary) string {
	var b strings.Builder

	if s.SaveErr != nil {
		b.WriteString(tui.ErrorStyle.Render("✗ Project not saved"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%v\n", s.SaveErr))
	} else {
		b.WriteString(tui.SuccessStyle.Render("✓ Project Created"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Saved %s\n", s.ProjectFile))
	}

	b.WriteString(fmt.Sprintf("%s project %q (%s)\n", s.Details.Language, s.Details.Name, s.Details.Kind))

	for _, c := range models.Categories() {
		names := s.Files.Of(c)
		if len(names) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %s\n", c, strings.Join(names, ", ")))
	}

	for _, w := range s.Warnings {
		b.WriteString(tui.SubtleStyle.Render("warning: " + w))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderOutput formats one line of process output.
func RenderOutput(phase build.State, stream process.Stream, text string) string {
	prefix := tui.PhaseStyle.Render(fmt.Sprintf("[%s]", phase))
	if stream == process.Stderr {
		text = tui.StderrStyle.Render(text)
	}
	return prefix + " " + text
}

// RenderResult formats a finished process.
func RenderResult(r build.Result) string {
	if r.Success() {
		return tui.SuccessStyle.Render(fmt.Sprintf("✓ %s finished", r.Phase))
	}
	return tui.ErrorStyle.Render(fmt.Sprintf("✗ %s failed: %s", r.Phase, r.ErrorMessage))
}
