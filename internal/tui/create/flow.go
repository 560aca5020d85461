package create

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/tui"
)

// Flow asks for the details of a new project using huh forms.
type Flow struct {
	defaults Result
	theme    *huh.Theme
}

// Result captures the answers of the flow.
type Result struct {
	Name     string
	Path     string
	Language models.Language
	Kind     models.ProjectKind
	AddMain  bool
}

// Details validates the answers and converts them to project details.
func (r Result) Details() (models.ProjectDetails, error) {
	return models.NewProjectDetails(r.Name, r.Path, r.Language, r.Kind)
}

// NewFlow constructs a Flow prefilled with defaults. An empty path is
// proposed as <parent>/<name>.
func NewFlow(defaults Result) *Flow {
	return &Flow{
		defaults: defaults,
		theme:    tui.NewHuhTheme(),
	}
}

// Run shows the forms; returns nil result on user abort.
func (f *Flow) Run(parent string) (*Result, error) {
	result := f.defaults
	if result.Language == "" {
		result.Language = models.LanguageCPP
	}
	if result.Kind == "" {
		result.Kind = models.KindConsole
	}

	if err := f.askName(&result); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	if result.Path == "" {
		result.Path = filepath.Join(parent, result.Name)
	}

	if err := f.askSettings(&result); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	return &result, nil
}

func (f *Flow) askName(result *Result) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&result.Name).
				Validate(ValidateName),
		).
			Title("New Project").
			Description("The project file is saved as <path>/<name>.pro."),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen())

	return form.Run()
}

func (f *Flow) askSettings(result *Result) error {
	lang := string(result.Language)
	kind := string(result.Kind)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Location").
				Value(&result.Path).
				Validate(ValidatePath),
			huh.NewSelect[string]().
				Title("Language").
				Options(
					huh.NewOption("C++", string(models.LanguageCPP)),
					huh.NewOption("C", string(models.LanguageC)),
				).
				Value(&lang),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Console application", string(models.KindConsole)),
					huh.NewOption("Static library", string(models.KindStaticLibrary)),
					huh.NewOption("Dynamic library", string(models.KindSharedLibrary)),
				).
				Value(&kind),
			huh.NewConfirm().
				Title("Add main file?").
				Value(&result.AddMain),
		).
			Title(fmt.Sprintf("Project %s", result.Name)),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen())

	if err := form.Run(); err != nil {
		return err
	}

	result.Language = models.Language(lang)
	result.Kind = models.ProjectKind(kind)
	return nil
}

// ValidateName rejects names that cannot be used as a project file name.
func ValidateName(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.ContainsAny(v, `/\"`) {
		return fmt.Errorf("name must not contain / \\ or \"")
	}
	return nil
}

// ValidatePath rejects an empty location.
func ValidatePath(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("location cannot be empty")
	}
	return nil
}
