package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tacticalyash/IDEStudio/internal/build"
	"github.com/tacticalyash/IDEStudio/internal/config"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/process"
	"github.com/tacticalyash/IDEStudio/internal/project"
	"github.com/tacticalyash/IDEStudio/internal/tui/create"
	"github.com/tacticalyash/IDEStudio/internal/workspace"
)

// NewCommand handles the new command
type NewCommand struct {
	fs       filesystem.FileSystem
	launcher process.Launcher
	getenv   func(string) string

	// interactive and prompt are replaced in tests
	interactive func() bool
	prompt      func(defaults create.Result, parent string) (*create.Result, error)

	name    string
	path    string
	lang    string
	kind    string
	addMain bool
	sources []string
	headers []string
	others  []string
	files   []string

	build   bool
	clean   bool
	rebuild bool

	stdoutWriter io.Writer
	stderrWriter io.Writer
}

// NewNewCommand creates a new new command
func NewNewCommand(fs filesystem.FileSystem, launcher process.Launcher) *cobra.Command {
	cmd := &NewCommand{
		fs:          fs,
		launcher:    launcher,
		interactive: stdinIsTerminal,
		prompt: func(defaults create.Result, parent string) (*create.Result, error) {
			return create.NewFlow(defaults).Run(parent)
		},
	}

	cobraCmd := &cobra.Command{
		Use:   "new",
		Short: "Create a project, add files and optionally build it",
		Long: `Create a project directory, add files from templates, write the build
descriptor and run the configure step. The project is saved to
<path>/<name>.pro when the command finishes.

Without --name or --path, an interactive form is shown on a terminal.`,
		Example: `  # Console application with a main file
  idestudio new --name demo --path ./demo --main

  # Static C library, built once the files are in place
  idestudio new --name util --path ./util --lang C --kind static \
    --source util.c --header util.h --build

  # Let the extension decide the category
  idestudio new --name demo --path ./demo --file a.cpp --file a.hpp --file README.md`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	flags := cobraCmd.Flags()
	flags.StringVar(&cmd.name, "name", "", "Project name")
	flags.StringVar(&cmd.path, "path", "", "Project directory")
	flags.StringVar(&cmd.lang, "lang", "", "Language: C++ or C (default from configuration)")
	flags.StringVar(&cmd.kind, "kind", "console", "Project type: console, static or shared")
	flags.BoolVar(&cmd.addMain, "main", false, "Add main.c or main.cpp")
	flags.StringArrayVar(&cmd.sources, "source", nil, "Add a source file (repeatable)")
	flags.StringArrayVar(&cmd.headers, "header", nil, "Add a header file with an include guard (repeatable)")
	flags.StringArrayVar(&cmd.others, "other", nil, "Add another file (repeatable)")
	flags.StringArrayVar(&cmd.files, "file", nil, "Add a file, category from its extension (repeatable)")
	flags.BoolVar(&cmd.build, "build", false, "Build after the files are added")
	flags.BoolVar(&cmd.clean, "clean", false, "Clean after the files are added")
	flags.BoolVar(&cmd.rebuild, "rebuild", false, "Clean, then build, after the files are added")
	cobraCmd.MarkFlagsMutuallyExclusive("build", "clean", "rebuild")

	return cobraCmd
}

// Run executes the new command
func (c *NewCommand) Run(cmd *cobra.Command, args []string) error {
	out := stdout(cmd, c.stdoutWriter)

	cfg, err := loadConfig(c.fs, c.getenv)
	if err != nil {
		return err
	}

	details, addMain, err := c.resolveDetails(cfg)
	if err != nil {
		return err
	}
	if details == nil {
		_, _ = fmt.Fprintln(out, "Aborted.")
		return nil
	}

	printer := &outputPrinter{w: out}
	options := []workspace.Option{
		workspace.WithConfig(cfg),
		workspace.WithLogger(loggerFromCmd(cmd, cfg, stderr(cmd, c.stderrWriter))),
		workspace.WithListener(printer),
	}
	if c.launcher != nil {
		options = append(options, workspace.WithLauncher(c.launcher))
	}

	ws, err := workspace.Open(*details, c.fs, options...)
	if err != nil {
		return fmt.Errorf("failed to open project: %w", err)
	}

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}

	warnings, runErr := c.populate(ctx, ws, addMain, printer)
	saveErr := ws.Close()

	printer.print(create.RenderSummary(create.Summary{
		Details:     ws.Details,
		Files:       ws.Tree.Files(),
		ProjectFile: ws.ProjectFilePath(),
		Warnings:    warnings,
		SaveErr:     saveErr,
	}))

	if runErr != nil {
		return runErr
	}
	if saveErr != nil {
		return fmt.Errorf("failed to save project: %w", saveErr)
	}
	return nil
}

func (c *NewCommand) resolveDetails(cfg config.Config) (*models.ProjectDetails, bool, error) {
	lang := cfg.Language()
	if c.lang != "" {
		parsed, err := models.ParseLanguage(c.lang)
		if err != nil {
			return nil, false, err
		}
		lang = parsed
	}

	kind, err := models.ParseProjectKind(c.kind)
	if err != nil {
		return nil, false, err
	}

	result := &create.Result{
		Name:     c.name,
		Path:     c.path,
		Language: lang,
		Kind:     kind,
		AddMain:  c.addMain,
	}

	if c.name == "" || c.path == "" {
		if c.interactive == nil || !c.interactive() {
			return nil, false, fmt.Errorf("--name and --path are required when not running in a terminal")
		}
		parent, err := c.fs.Getwd()
		if err != nil {
			return nil, false, fmt.Errorf("failed to get working directory: %w", err)
		}
		result, err = c.prompt(*result, parent)
		if err != nil {
			return nil, false, fmt.Errorf("failed to run form: %w", err)
		}
		if result == nil {
			return nil, false, nil
		}
	}

	path, err := absPath(c.fs, result.Path)
	if err != nil {
		return nil, false, err
	}
	result.Path = path

	details, err := result.Details()
	if err != nil {
		return nil, false, fmt.Errorf("invalid project: %w", err)
	}
	return &details, result.AddMain, nil
}

// populate adds the requested files, waits for the configure step to
// settle, then runs the requested action.
func (c *NewCommand) populate(ctx context.Context, ws *workspace.Workspace, addMain bool, printer *outputPrinter) ([]string, error) {
	var warnings []string
	note := func(created *project.Created) {
		if created.TemplateErr != nil {
			warnings = append(warnings, created.TemplateErr.Error())
		}
	}

	if addMain {
		created, err := ws.AddMainFile()
		if err != nil {
			return warnings, fmt.Errorf("failed to add main file: %w", err)
		}
		note(created)
	}

	for _, f := range c.requestedFiles(ws.Details.Language) {
		created, err := ws.AddFile(f.category, f.name, f.hint, "")
		if err != nil {
			return warnings, fmt.Errorf("failed to add %s: %w", f.name, err)
		}
		note(created)
	}

	if err := ws.WaitIdle(ctx); err != nil {
		return warnings, err
	}

	var (
		phase  build.State
		action func() error
	)
	switch {
	case c.build:
		phase, action = build.Building, ws.Build
	case c.clean:
		phase, action = build.Cleaning, ws.Clean
	case c.rebuild:
		phase, action = build.Building, ws.Rebuild
	default:
		return warnings, nil
	}

	mark := printer.resultCount()
	if err := action(); err != nil {
		return warnings, err
	}
	if err := ws.WaitIdle(ctx); err != nil {
		return warnings, err
	}

	for _, r := range printer.resultsSince(mark) {
		if !r.Success() {
			return warnings, fmt.Errorf("%s failed: %s", r.Phase, r.ErrorMessage)
		}
	}
	if !printer.finished(mark, phase) {
		return warnings, fmt.Errorf("%s did not run", phase)
	}
	return warnings, nil
}

type requestedFile struct {
	category models.Category
	name     string
	hint     models.TemplateHint
}

func (c *NewCommand) requestedFiles(lang models.Language) []requestedFile {
	var files []requestedFile
	add := func(cat models.Category, name string) {
		hint := models.HintNone
		if cat == models.CategoryHeaders {
			hint = models.HintHeader
		}
		files = append(files, requestedFile{category: cat, name: filepath.Clean(name), hint: hint})
	}

	for _, name := range c.sources {
		add(models.CategorySources, name)
	}
	for _, name := range c.headers {
		add(models.CategoryHeaders, name)
	}
	for _, name := range c.others {
		add(models.CategoryOthers, name)
	}
	for _, name := range c.files {
		add(lang.CategoryForFile(name), name)
	}
	return files
}

// outputPrinter writes process output and results as they arrive.
type outputPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	results []build.Result
}

func (p *outputPrinter) ProcessOutput(phase build.State, stream process.Stream, text string) {
	p.print(create.RenderOutput(phase, stream, text) + "\n")
}

func (p *outputPrinter) ProcessFinished(result build.Result) {
	p.mu.Lock()
	p.results = append(p.results, result)
	p.mu.Unlock()

	p.print(create.RenderResult(result) + "\n")
}

func (p *outputPrinter) print(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.w, s)
}

func (p *outputPrinter) resultCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.results)
}

func (p *outputPrinter) resultsSince(mark int) []build.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]build.Result(nil), p.results[mark:]...)
}

func (p *outputPrinter) finished(mark int, phase build.State) bool {
	for _, r := range p.resultsSince(mark) {
		if r.Phase == phase {
			return true
		}
	}
	return false
}

var _ build.Listener = (*outputPrinter)(nil)
