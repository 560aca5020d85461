package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const runIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// NewRunID returns a short random identifier for a process run.
func NewRunID() (string, error) {
	id, err := gonanoid.Generate(runIDAlphabet, 8)
	if err != nil {
		return "", fmt.Errorf("failed to generate run id: %w", err)
	}
	return id, nil
}

// OSLauncher implements Launcher with os/exec.
type OSLauncher struct{}

// NewOSLauncher creates a new OSLauncher
func NewOSLauncher() *OSLauncher {
	return &OSLauncher{}
}

type osProcess struct {
	id      string
	command Command
	cmd     *exec.Cmd
	started time.Time
	done    chan struct{}

	outMu    sync.Mutex
	onOutput OutputFunc
}

func (p *osProcess) ID() string            { return p.id }
func (p *osProcess) Command() Command      { return p.command }
func (p *osProcess) Done() <-chan struct{} { return p.done }

// Launch starts the command and streams its output line by line.
func (l *OSLauncher) Launch(command Command, onOutput OutputFunc, onExit ExitFunc) (Handle, error) {
	id, err := NewRunID()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(command.Program, command.Args...)
	cmd.Dir = command.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStartFailed, command, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStartFailed, command, err)
	}

	p := &osProcess{
		id:       id,
		command:  command,
		cmd:      cmd,
		done:     make(chan struct{}),
		onOutput: onOutput,
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStartFailed, command, err)
	}
	p.started = time.Now()

	var readers sync.WaitGroup
	readers.Add(2)
	go p.pump(&readers, Stdout, stdout)
	go p.pump(&readers, Stderr, stderr)

	go func() {
		// Pipes must be drained before Wait closes them.
		readers.Wait()
		exit := p.wait()
		if onExit != nil {
			onExit(exit)
		}
		close(p.done)
	}()

	return p, nil
}

func (p *osProcess) pump(wg *sync.WaitGroup, stream Stream, r io.Reader) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if p.onOutput == nil {
			continue
		}
		p.outMu.Lock()
		p.onOutput(stream, scanner.Text())
		p.outMu.Unlock()
	}
	// Drain whatever the scanner refused so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

func (p *osProcess) wait() Exit {
	err := p.cmd.Wait()
	exit := Exit{
		RunID:    p.id,
		Status:   NormalExit,
		Duration: time.Since(p.started),
	}
	if err == nil {
		return exit
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exit.Code = exitErr.ExitCode()
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			exit.Status = CrashExit
		}
		return exit
	}

	exit.Code = -1
	exit.Status = CrashExit
	exit.Err = err
	return exit
}
