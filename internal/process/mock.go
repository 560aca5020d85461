package process

import (
	"fmt"
	"sync"
)

// MockLauncher implements Launcher for testing. Launched processes stay
// running until the test finishes them with MockRun.Finish or Crash.
type MockLauncher struct {
	mu   sync.Mutex
	runs []*MockRun
	seq  int

	// LaunchError, when set, makes every Launch fail with it.
	LaunchError error
	// Failures counts Launch calls rejected through LaunchError.
	Failures int

	// AutoFinish, when set, is asked for the stdout lines and exit code of
	// every launched process, which then finishes on its own goroutine.
	AutoFinish func(cmd Command) (stdout []string, code int)
}

// MockRun is a process started by MockLauncher.
type MockRun struct {
	id       string
	command  Command
	onOutput OutputFunc
	onExit   ExitFunc
	done     chan struct{}

	mu       sync.Mutex
	finished bool
}

// NewMockLauncher creates a new MockLauncher
func NewMockLauncher() *MockLauncher {
	return &MockLauncher{}
}

func (m *MockLauncher) Launch(cmd Command, onOutput OutputFunc, onExit ExitFunc) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LaunchError != nil {
		m.Failures++
		return nil, fmt.Errorf("%w: %s: %w", ErrStartFailed, cmd, m.LaunchError)
	}

	m.seq++
	run := &MockRun{
		id:       fmt.Sprintf("run-%d", m.seq),
		command:  Command{Program: cmd.Program, Args: append([]string(nil), cmd.Args...), Dir: cmd.Dir},
		onOutput: onOutput,
		onExit:   onExit,
		done:     make(chan struct{}),
	}
	m.runs = append(m.runs, run)

	if m.AutoFinish != nil {
		lines, code := m.AutoFinish(run.command)
		go func() {
			for _, line := range lines {
				run.Emit(Stdout, line)
			}
			run.Finish(code)
		}()
	}
	return run, nil
}

// Runs returns every process launched so far, in launch order.
func (m *MockLauncher) Runs() []*MockRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockRun(nil), m.runs...)
}

// Commands returns the command of every launched process, in launch order.
func (m *MockLauncher) Commands() []Command {
	var out []Command
	for _, r := range m.Runs() {
		out = append(out, r.command)
	}
	return out
}

// Running returns the processes that have not been finished yet.
func (m *MockLauncher) Running() []*MockRun {
	var out []*MockRun
	for _, r := range m.Runs() {
		if !r.Finished() {
			out = append(out, r)
		}
	}
	return out
}

// Last returns the most recently launched process, or nil.
func (m *MockLauncher) Last() *MockRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.runs) == 0 {
		return nil
	}
	return m.runs[len(m.runs)-1]
}

func (r *MockRun) ID() string            { return r.id }
func (r *MockRun) Command() Command      { return r.command }
func (r *MockRun) Done() <-chan struct{} { return r.done }

// Finished reports whether Finish or Crash has been called
func (r *MockRun) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Emit delivers an output line as if the process had written it.
func (r *MockRun) Emit(stream Stream, text string) {
	if r.onOutput != nil {
		r.onOutput(stream, text)
	}
}

// Finish ends the process with a normal exit and runs the exit callback
// on the calling goroutine.
func (r *MockRun) Finish(code int) {
	r.exit(Exit{RunID: r.id, Code: code, Status: NormalExit})
}

// Crash ends the process abnormally.
func (r *MockRun) Crash(err error) {
	r.exit(Exit{RunID: r.id, Code: -1, Status: CrashExit, Err: err})
}

func (r *MockRun) exit(e Exit) {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		panic(fmt.Sprintf("mock process %s (%s) finished twice", r.id, r.command))
	}
	r.finished = true
	r.mu.Unlock()

	if r.onExit != nil {
		r.onExit(e)
	}
	close(r.done)
}
