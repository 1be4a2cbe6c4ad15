package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	ilogger "leaderboard-launcher/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Exit codes reported when the child never ran, following shell conventions.
const (
	ExitLaunchFailed = 126
	ExitNotFound     = 127
)

const copyBufferSize = 32 * 1024

var (
	newCommand       = exec.Command
	forceKillDelay   atomic.Int64 // nanoseconds
	outputDrainDelay atomic.Int64 // nanoseconds
)

func init() {
	forceKillDelay.Store(int64(5 * time.Second))
	outputDrainDelay.Store(int64(2 * time.Second))
}

// SetForceKillDelay sets the grace period between SIGTERM and a hard kill
// when a launch context is cancelled. It returns a func restoring the
// previous value.
func SetForceKillDelay(d time.Duration) (restore func()) {
	prev := forceKillDelay.Swap(int64(d))
	return func() { forceKillDelay.Store(prev) }
}

// ForceKillDelay reports the current grace period between SIGTERM and a
// hard kill.
func ForceKillDelay() time.Duration {
	return time.Duration(forceKillDelay.Load())
}

func setOutputDrainDelay(d time.Duration) (restore func()) {
	prev := outputDrainDelay.Swap(int64(d))
	return func() { outputDrainDelay.Store(prev) }
}

// Run starts spec.Command, tees its stdout and stderr to the console writers
// and log files, and blocks until both streams are drained and the process
// has been reaped. The child runs in its own process group; cancelling ctx
// sends SIGTERM to that group and, after the force-kill delay, kills it.
//
// A non-nil error means the child could not be started (or its log files
// could not be created); Result.ExitCode is set in every case.
func Run(ctx context.Context, spec Spec) (Result, error) {
	res := Result{ExitCode: ExitLaunchFailed}
	name := spec.Name
	if name == "" {
		name = "child"
	}
	if strings.TrimSpace(spec.Command) == "" {
		return res, errors.New("executor: empty command")
	}

	stdoutLog, err := createLog(spec.StdoutLog)
	if err != nil {
		return res, err
	}
	defer closeLog(stdoutLog)
	stderrLog, err := createLog(spec.StderrLog)
	if err != nil {
		return res, err
	}
	defer closeLog(stderrLog)

	cmd := newCommand(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = spec.Stdin
	setProcessGroup(cmd)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return res, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	defer stdoutR.Close()
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutW.Close()
		return res, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	defer stderrR.Close()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	start := time.Now()
	startErr := cmd.Start()
	// The child holds its own copies of the write ends.
	stdoutW.Close()
	stderrW.Close()
	if startErr != nil {
		if errors.Is(startErr, exec.ErrNotFound) || errors.Is(startErr, os.ErrNotExist) {
			res.ExitCode = ExitNotFound
		}
		return res, fmt.Errorf("failed to start %s: %w", name, startErr)
	}
	res.PID = cmd.Process.Pid
	ilogger.LogInfo(fmt.Sprintf("Started %s pid=%d", name, res.PID))

	done := make(chan struct{})
	interrupted := make(chan struct{})
	go watchCancel(ctx, processGroup(cmd.Process), name, done, interrupted)

	tail := &tailBuffer{limit: stderrTailLimit}
	mirror := newLogWriter(name+" stderr: ", mirrorLineLimit)
	outTee := newTeeWriter().add("console stdout", spec.Stdout).add("stdout log", fileWriter(stdoutLog))
	errTee := newTeeWriter().add("console stderr", spec.Stderr).add("stderr log", fileWriter(stderrLog)).
		add("stderr tail", tail).add("diagnostic log", mirror)

	var g errgroup.Group
	g.Go(func() error { return copyStream(outTee, stdoutR, "stdout") })
	g.Go(func() error { return copyStream(errTee, stderrR, "stderr") })
	copied := make(chan error, 1)
	go func() { copied <- g.Wait() }()

	waitErr := cmd.Wait()
	close(done)

	// A descendant that escaped the process group can keep the pipes open
	// after the child exits; stop reading once the drain delay has passed.
	var copyErr error
	drain := time.NewTimer(time.Duration(outputDrainDelay.Load()))
	select {
	case copyErr = <-copied:
	case <-drain.C:
		ilogger.LogWarn(fmt.Sprintf("%s exited but its output is still held open; closing pipes", name))
		stdoutR.Close()
		stderrR.Close()
		copyErr = <-copied
	}
	drain.Stop()
	mirror.Flush()

	res.Duration = time.Since(start)
	res.ExitCode = exitCode(cmd.ProcessState, waitErr)
	res.StderrTail = tail.String()
	select {
	case <-interrupted:
		res.Interrupted = true
	default:
	}
	res.OutputErr = errors.Join(copyErr, outTee.Err(), errTee.Err())
	if res.OutputErr != nil {
		ilogger.LogError(fmt.Sprintf("Output duplication for %s was incomplete: %v", name, res.OutputErr))
	}
	ilogger.LogInfo(fmt.Sprintf("%s pid=%d exited with code %d after %s", name, res.PID, res.ExitCode, res.Duration.Round(time.Millisecond)))
	return res, nil
}

// watchCancel forwards cancellation of ctx to proc: SIGTERM first, a kill
// once the force-kill delay has passed without the process exiting.
func watchCancel(ctx context.Context, proc processHandle, name string, done <-chan struct{}, interrupted chan<- struct{}) {
	select {
	case <-done:
		return
	case <-ctx.Done():
	}
	close(interrupted)

	ilogger.LogWarn(fmt.Sprintf("Launch cancelled (%v); sending SIGTERM to %s", context.Cause(ctx), name))
	if err := sendTermSignal(proc); err != nil && !errors.Is(err, os.ErrProcessDone) {
		ilogger.LogWarn(fmt.Sprintf("Failed to signal %s: %v", name, err))
	}

	delay := time.Duration(forceKillDelay.Load())
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		ilogger.LogWarn(fmt.Sprintf("%s still running %s after SIGTERM; killing", name, delay))
		if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			ilogger.LogError(fmt.Sprintf("Failed to kill %s: %v", name, err))
		}
	}
}

func copyStream(dst io.Writer, src io.Reader, stream string) error {
	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(dst, src, buf); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("copy %s: %w", stream, err)
	}
	return nil
}

func createLog(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return f, nil
}

func closeLog(f *os.File) {
	if f == nil {
		return
	}
	if err := f.Close(); err != nil {
		ilogger.LogWarn(fmt.Sprintf("Failed to close %s: %v", f.Name(), err))
	}
}

// fileWriter avoids storing a typed nil *os.File in an io.Writer.
func fileWriter(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}

type processHandle interface {
	Signal(os.Signal) error
	Kill() error
}
