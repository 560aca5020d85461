package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/logging"
	"github.com/tacticalyash/IDEStudio/internal/models"
	"github.com/tacticalyash/IDEStudio/internal/process"
	"github.com/tacticalyash/IDEStudio/internal/project"
)

var (
	// ErrProcessAlreadyRunning is returned when a build, clean or rebuild is
	// requested while a process is active. Nothing changes; callers may
	// ignore it.
	ErrProcessAlreadyRunning = errors.New("a process is already running")

	// ErrProcessSpawnFailed wraps failures to start the external tool.
	ErrProcessSpawnFailed = errors.New("failed to spawn process")

	// ErrDescriptorWrite wraps failures to write the build descriptor.
	ErrDescriptorWrite = errors.New("failed to write build descriptor")
)

// State is the orchestrator state. Every state but Idle owns exactly one
// running process.
type State int

const (
	Idle State = iota
	Configuring
	Building
	Cleaning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configuring:
		return "configuring"
	case Building:
		return "building"
	case Cleaning:
		return "cleaning"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is delivered when a process finishes or fails to start.
type Result struct {
	Phase        State
	RunID        string
	ExitCode     int
	Status       process.ExitStatus
	ErrorMessage string
}

// Success reports a normal exit with code zero.
func (r Result) Success() bool {
	return r.Status == process.NormalExit && r.ExitCode == 0 && r.ErrorMessage == ""
}

// Listener receives process notifications. Calls are made without any
// orchestrator lock held, so listeners may call back into the orchestrator.
type Listener interface {
	ProcessOutput(phase State, stream process.Stream, text string)
	ProcessFinished(result Result)
}

// Source provides the project data the descriptor is generated from.
// *project.Tree implements it.
type Source interface {
	Details() models.ProjectDetails
	Files() project.Files
}

// Toolchain holds the external programs driven by the orchestrator.
type Toolchain struct {
	ConfigureProgram string
	ConfigureArgs    []string
	BuildProgram     string
	BuildArgs        []string
	CleanArgs        []string
	BuildDir         string
}

// DefaultToolchain runs cmake to configure and make to build and clean.
func DefaultToolchain() Toolchain {
	return Toolchain{
		ConfigureProgram: "cmake",
		ConfigureArgs:    []string{"-S", ".", "-B", "build"},
		BuildProgram:     "make",
		CleanArgs:        []string{"clean"},
		BuildDir:         "build",
	}
}

// Orchestrator regenerates the build descriptor and drives a single
// configure, build or clean process at a time.
//
// Regenerate requests that arrive while a process runs are coalesced into
// one regenerate that runs when the process finishes. Build and clean
// requests while busy are rejected.
type Orchestrator struct {
	mu        sync.Mutex
	source    Source
	fs        filesystem.FileSystem
	launcher  process.Launcher
	toolchain Toolchain
	logger    *slog.Logger
	listeners []Listener

	state             State
	pendingRegenerate bool
	buildQueued       bool
	active            process.Handle
	seq               uint64

	// changed is closed and replaced on every transition; dispatching counts
	// notification batches still being delivered.
	changed     chan struct{}
	dispatching int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(lg *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = lg
	}
}

// WithLauncher replaces the process launcher
func WithLauncher(l process.Launcher) Option {
	return func(o *Orchestrator) {
		o.launcher = l
	}
}

// WithToolchain replaces the external programs
func WithToolchain(tc Toolchain) Option {
	return func(o *Orchestrator) {
		o.toolchain = tc
	}
}

// WithListener registers a listener at construction time
func WithListener(l Listener) Option {
	return func(o *Orchestrator) {
		o.listeners = append(o.listeners, l)
	}
}

// New creates an idle orchestrator for the project provided by source.
func New(source Source, fs filesystem.FileSystem, options ...Option) *Orchestrator {
	o := &Orchestrator{
		source:    source,
		fs:        fs,
		toolchain: DefaultToolchain(),
		changed:   make(chan struct{}),
	}

	for _, option := range options {
		option(o)
	}
	if o.launcher == nil {
		o.launcher = process.NewOSLauncher()
	}
	o.logger = logging.OrDiscard(o.logger)

	return o
}

// Subscribe registers a listener
func (o *Orchestrator) Subscribe(l Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// PendingRegenerate reports whether a coalesced regenerate is waiting for
// the active process to finish.
func (o *Orchestrator) PendingRegenerate() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pendingRegenerate
}

// BuildQueued reports whether a rebuild is waiting to start its build step.
func (o *Orchestrator) BuildQueued() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buildQueued
}

// Active returns the running process, or nil when idle.
func (o *Orchestrator) Active() process.Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// DescriptorPath returns the path of the generated build descriptor
func (o *Orchestrator) DescriptorPath() string {
	return filepath.Join(o.source.Details().Path, DescriptorFile)
}

// TreeChanged regenerates after a project tree mutation. Errors are logged;
// the mutation itself has already succeeded.
func (o *Orchestrator) TreeChanged() {
	if err := o.Regenerate(); err != nil {
		o.logger.Error("regenerate after tree change failed", "error", err)
	}
}

// WriteDescriptor rewrites the build descriptor without starting the
// configure step.
func (o *Orchestrator) WriteDescriptor() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.writeDescriptorLocked()
}

// Regenerate rewrites the build descriptor and starts the configure step.
// While a process is active the configure step is deferred until it
// finishes; any number of deferred requests collapse into one.
func (o *Orchestrator) Regenerate() error {
	o.mu.Lock()
	events, err := o.regenerateLocked()
	o.unlockAndDispatch(events)
	return err
}

// Build starts the build tool using the last generated descriptor.
func (o *Orchestrator) Build() error {
	return o.start(Building, "build")
}

// Clean starts the clean step.
func (o *Orchestrator) Clean() error {
	return o.start(Cleaning, "clean")
}

// Rebuild starts the clean step and queues a build that starts once the
// clean step, and any regenerate deferred meanwhile, has finished
// successfully.
func (o *Orchestrator) Rebuild() error {
	o.mu.Lock()
	if o.state != Idle {
		state := o.state
		o.mu.Unlock()
		o.logger.Info("rebuild rejected", "state", state.String())
		return ErrProcessAlreadyRunning
	}

	events, err := o.spawnLocked(Cleaning)
	if err == nil {
		o.buildQueued = true
	}
	o.unlockAndDispatch(events)
	return err
}

func (o *Orchestrator) start(target State, action string) error {
	o.mu.Lock()
	if o.state != Idle {
		state := o.state
		o.mu.Unlock()
		o.logger.Info(action+" rejected", "state", state.String())
		return ErrProcessAlreadyRunning
	}

	events, err := o.spawnLocked(target)
	o.unlockAndDispatch(events)
	return err
}

// WaitIdle blocks until no process is active, nothing is queued, and every
// notification has been delivered.
func (o *Orchestrator) WaitIdle(ctx context.Context) error {
	for {
		o.mu.Lock()
		if o.state == Idle && o.dispatching == 0 {
			o.mu.Unlock()
			return nil
		}
		changed := o.changed
		o.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (o *Orchestrator) regenerateLocked() ([]func(), error) {
	writeErr := o.writeDescriptorLocked()

	if o.state != Idle {
		if !o.pendingRegenerate {
			o.logger.Debug("regenerate deferred", "state", o.state.String())
		} else {
			o.logger.Debug("regenerate coalesced", "state", o.state.String())
		}
		o.pendingRegenerate = true
		return nil, writeErr
	}

	if writeErr != nil {
		return nil, writeErr
	}
	return o.spawnLocked(Configuring)
}

func (o *Orchestrator) writeDescriptorLocked() error {
	details := o.source.Details()
	path := filepath.Join(details.Path, DescriptorFile)

	content, err := GenerateDescriptor(details, o.source.Files())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDescriptorWrite, err)
	}
	if err := o.fs.WriteFile(path, []byte(content), 0644); err != nil {
		o.logger.Error("descriptor write failed", "path", path, "error", err)
		return fmt.Errorf("%w %s: %w", ErrDescriptorWrite, path, err)
	}

	o.logger.Debug("descriptor rewritten", "path", path)
	return nil
}

func (o *Orchestrator) command(target State) process.Command {
	root := o.source.Details().Path
	buildDir := filepath.Join(root, o.toolchain.BuildDir)

	switch target {
	case Configuring:
		return process.Command{
			Program: o.toolchain.ConfigureProgram,
			Args:    append([]string(nil), o.toolchain.ConfigureArgs...),
			Dir:     root,
		}
	case Cleaning:
		return process.Command{
			Program: o.toolchain.BuildProgram,
			Args:    append([]string(nil), o.toolchain.CleanArgs...),
			Dir:     buildDir,
		}
	default:
		return process.Command{
			Program: o.toolchain.BuildProgram,
			Args:    append([]string(nil), o.toolchain.BuildArgs...),
			Dir:     buildDir,
		}
	}
}

// spawnLocked starts the process for target. The orchestrator must be idle.
// On failure the state stays Idle and a failed Result is queued for the
// listeners.
func (o *Orchestrator) spawnLocked(target State) ([]func(), error) {
	cmd := o.command(target)
	o.seq++
	seq := o.seq

	handle, err := o.launcher.Launch(cmd,
		func(stream process.Stream, text string) {
			o.deliverOutput(target, stream, text)
		},
		func(exit process.Exit) {
			o.handleExit(seq, target, exit)
		},
	)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrProcessSpawnFailed, err)
		o.logger.Error("process spawn failed", "phase", target.String(), "command", cmd.String(), "error", err)
		o.buildQueued = false
		return o.finishedEvents(Result{
			Phase:        target,
			ExitCode:     -1,
			Status:       process.CrashExit,
			ErrorMessage: err.Error(),
		}), err
	}

	o.active = handle
	o.state = target
	o.logger.Info("process spawned", "phase", target.String(), "command", cmd.String(), "dir", cmd.Dir, "run", handle.ID())
	return nil, nil
}

func (o *Orchestrator) handleExit(seq uint64, phase State, exit process.Exit) {
	o.mu.Lock()
	if seq != o.seq || o.state == Idle {
		o.mu.Unlock()
		return
	}

	o.active = nil
	o.state = Idle

	result := Result{
		Phase:        phase,
		RunID:        exit.RunID,
		ExitCode:     exit.Code,
		Status:       exit.Status,
		ErrorMessage: exit.Message(),
	}
	o.logger.Info("process finished", "phase", phase.String(), "run", exit.RunID, "code", exit.Code, "status", exit.Status.String())
	events := o.finishedEvents(result)

	if o.buildQueued && !result.Success() {
		o.buildQueued = false
		o.logger.Warn("rebuild aborted", "phase", phase.String(), "code", exit.Code)
	}

	switch {
	case o.pendingRegenerate:
		o.pendingRegenerate = false
		more, err := o.regenerateLocked()
		if err != nil {
			o.logger.Error("deferred regenerate failed", "error", err)
		}
		// The queued build only follows a configure step that is running.
		if o.buildQueued && o.state != Configuring {
			o.buildQueued = false
			o.logger.Warn("rebuild aborted", "phase", Configuring.String())
		}
		events = append(events, more...)
	case o.buildQueued:
		o.buildQueued = false
		more, _ := o.spawnLocked(Building)
		events = append(events, more...)
	}

	o.unlockAndDispatch(events)
}

func (o *Orchestrator) finishedEvents(result Result) []func() {
	listeners := append([]Listener(nil), o.listeners...)
	return []func(){
		func() {
			for _, l := range listeners {
				l.ProcessFinished(result)
			}
		},
	}
}

func (o *Orchestrator) deliverOutput(phase State, stream process.Stream, text string) {
	o.mu.Lock()
	listeners := append([]Listener(nil), o.listeners...)
	o.mu.Unlock()

	for _, l := range listeners {
		l.ProcessOutput(phase, stream, text)
	}
}

// unlockAndDispatch releases the lock, delivers events, and wakes WaitIdle
// callers once delivery is complete. The caller must hold o.mu.
func (o *Orchestrator) unlockAndDispatch(events []func()) {
	if len(events) == 0 {
		o.broadcastLocked()
		o.mu.Unlock()
		return
	}

	o.dispatching++
	o.mu.Unlock()

	for _, event := range events {
		event()
	}

	o.mu.Lock()
	o.dispatching--
	o.broadcastLocked()
	o.mu.Unlock()
}

func (o *Orchestrator) broadcastLocked() {
	close(o.changed)
	o.changed = make(chan struct{})
}
