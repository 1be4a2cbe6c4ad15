package executor

import (
	"io"
	"time"
)

// Spec describes one child process launch.
type Spec struct {
	// Name labels the process in diagnostics, e.g. "evaluator".
	Name    string
	Command string
	Args    []string
	Dir     string
	// Env is the complete child environment (KEY=value). Nil inherits the
	// launcher's environment.
	Env []string

	Stdin io.Reader
	// Stdout and Stderr are the console destinations; nil discards.
	Stdout io.Writer
	Stderr io.Writer
	// StdoutLog and StderrLog are created (or truncated) and receive a
	// byte-for-byte copy of the respective stream. Empty disables the copy.
	StdoutLog string
	StderrLog string
}

// Result is the outcome of a completed launch.
type Result struct {
	PID      int
	ExitCode int
	Duration time.Duration
	// Interrupted is set when the launch context was cancelled while the
	// child was running.
	Interrupted bool
	// StderrTail holds the last bytes the child wrote to stderr.
	StderrTail string
	// OutputErr reports failures copying the child's streams; the child's
	// exit code is unaffected.
	OutputErr error
}
