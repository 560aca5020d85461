package process

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStartFailed is returned when a process could not be started.
var ErrStartFailed = errors.New("failed to start process")

// Stream identifies the output stream a line was read from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// ExitStatus tells a normal exit from a crash (killed by a signal or lost).
type ExitStatus int

const (
	NormalExit ExitStatus = iota
	CrashExit
)

func (s ExitStatus) String() string {
	if s == CrashExit {
		return "crashed"
	}
	return "normal"
}

// Command is a program invocation.
type Command struct {
	Program string
	Args    []string
	Dir     string
}

// String renders the command line
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// Exit describes how a process finished.
type Exit struct {
	RunID    string
	Code     int
	Status   ExitStatus
	Err      error
	Duration time.Duration
}

// Success reports a normal exit with code zero.
func (e Exit) Success() bool {
	return e.Status == NormalExit && e.Code == 0
}

// Message returns a diagnostic for the exit, empty on success.
func (e Exit) Message() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Status == CrashExit:
		return "process crashed"
	case e.Code != 0:
		return fmt.Sprintf("process exited with code %d", e.Code)
	default:
		return ""
	}
}

// OutputFunc receives output lines, one call at a time.
type OutputFunc func(stream Stream, text string)

// ExitFunc receives the exit of a process. It is called once, after every
// output line has been delivered, and never from inside Launch.
type ExitFunc func(exit Exit)

// Handle is a started process.
type Handle interface {
	ID() string
	Command() Command
	// Done is closed after the exit callback returns.
	Done() <-chan struct{}
}

// Launcher starts external processes.
type Launcher interface {
	Launch(cmd Command, onOutput OutputFunc, onExit ExitFunc) (Handle, error)
}
