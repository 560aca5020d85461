package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tacticalyash/IDEStudio/internal/build"
	"github.com/tacticalyash/IDEStudio/internal/config"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/logging"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/process"
	"github.com/tacticalyash/IDEStudio/internal/project"
	"github.com/tacticalyash/IDEStudio/internal/templates"
)

// ErrClosed is returned by operations on a closed workspace.
var ErrClosed = errors.New("workspace is closed")

// Workspace is an open project: its file tree, the build orchestrator
// following it, and the persistence performed on Close.
type Workspace struct {
	fs           filesystem.FileSystem
	Details      models.ProjectDetails
	Tree         *project.Tree
	Orchestrator *build.Orchestrator

	cfg       config.Config
	logger    *slog.Logger
	launcher  process.Launcher
	listeners []build.Listener

	mu     sync.Mutex
	closed bool
}

// Option configures workspace behavior.
type Option func(*Workspace)

// WithConfig applies toolchain, indent and template settings.
func WithConfig(cfg config.Config) Option {
	return func(w *Workspace) {
		w.cfg = config.Normalize(cfg)
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(lg *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = lg
	}
}

// WithLauncher replaces the process launcher used by the orchestrator.
func WithLauncher(l process.Launcher) Option {
	return func(w *Workspace) {
		w.launcher = l
	}
}

// WithListener registers a process listener.
func WithListener(l build.Listener) Option {
	return func(w *Workspace) {
		w.listeners = append(w.listeners, l)
	}
}

// Open creates the project directory if needed and wires the tree to the
// orchestrator. The build descriptor is written once; the configure step
// starts with the first tree change or an explicit Regenerate.
func Open(details models.ProjectDetails, fs filesystem.FileSystem, options ...Option) (*Workspace, error) {
	if err := details.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}

	w := &Workspace{
		fs:      fs,
		Details: details,
		cfg:     config.Default(),
	}
	for _, option := range options {
		option(w)
	}
	w.logger = logging.OrDiscard(w.logger).With("project", details.Name)

	if err := fs.MkdirAll(details.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	loader := templates.NewLoader(fs, w.cfg.Project.Templates)
	creator := templates.NewCreator(fs, loader, details)
	w.Tree = project.NewTree(details, fs, creator, project.WithLogger(w.logger))

	buildOpts := []build.Option{
		build.WithToolchain(w.cfg.BuildToolchain()),
		build.WithLogger(w.logger),
	}
	if w.launcher != nil {
		buildOpts = append(buildOpts, build.WithLauncher(w.launcher))
	}
	for _, l := range w.listeners {
		buildOpts = append(buildOpts, build.WithListener(l))
	}
	w.Orchestrator = build.New(w.Tree, fs, buildOpts...)
	w.Tree.Subscribe(w.Orchestrator)

	if err := w.Orchestrator.WriteDescriptor(); err != nil {
		w.logger.Warn("initial build descriptor not written", "error", err)
	}

	w.logger.Info("project opened", "path", details.Path, "language", details.Language.String(), "type", details.Kind.String())
	return w, nil
}

// Config returns the effective configuration
func (w *Workspace) Config() config.Config {
	return w.cfg
}

// ProjectFilePath returns the path written by Close
func (w *Workspace) ProjectFilePath() string {
	return w.Details.ProjectFilePath()
}

// AddFile creates a file in the given category.
func (w *Workspace) AddFile(c models.Category, name string, hint models.TemplateHint, prefix string) (*project.Created, error) {
	if w.isClosed() {
		return nil, ErrClosed
	}
	return w.Tree.AddFile(c, name, hint, prefix)
}

// AddMainFile creates main.c or main.cpp, depending on the project
// language, from the main template.
func (w *Workspace) AddMainFile() (*project.Created, error) {
	return w.AddFile(models.CategorySources, w.Details.Language.MainFileName(), models.HintMain, "")
}

// FileContents reads a tracked file.
func (w *Workspace) FileContents(name string) (string, error) {
	return w.Tree.FileContents(name)
}

// Build starts the build tool.
func (w *Workspace) Build() error {
	if w.isClosed() {
		return ErrClosed
	}
	return w.Orchestrator.Build()
}

// Clean starts the clean step.
func (w *Workspace) Clean() error {
	if w.isClosed() {
		return ErrClosed
	}
	return w.Orchestrator.Clean()
}

// Rebuild cleans, then builds.
func (w *Workspace) Rebuild() error {
	if w.isClosed() {
		return ErrClosed
	}
	return w.Orchestrator.Rebuild()
}

// Regenerate rewrites the build descriptor and configures.
func (w *Workspace) Regenerate() error {
	if w.isClosed() {
		return ErrClosed
	}
	return w.Orchestrator.Regenerate()
}

// WaitIdle waits for the orchestrator to settle.
func (w *Workspace) WaitIdle(ctx context.Context) error {
	return w.Orchestrator.WaitIdle(ctx)
}

// Close persists the project to <path>/<name>.pro. A write failure is
// logged and returned; the workspace is closed either way. A running
// process is not interrupted.
func (w *Workspace) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if state := w.Orchestrator.State(); state != build.Idle {
		w.logger.Warn("closing while a process is running", "state", state.String())
	}

	path, err := project.Save(w.fs, w.Tree, w.cfg.Project.Indent)
	if err != nil {
		w.logger.Error("project file not saved", "path", path, "error", err)
		return err
	}

	w.logger.Info("project saved", "path", path)
	return nil
}

func (w *Workspace) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}
