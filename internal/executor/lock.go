package executor

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrRunLocked is returned when another launcher holds the lock for the same
// route outputs.
var ErrRunLocked = errors.New("outputs are locked by another launcher")

// RunLock guards one route's output files against concurrent launchers.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// AcquireRunLock takes an exclusive, non-blocking lock on path. The lock
// file's directory must exist.
func AcquireRunLock(path string) (*RunLock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunLocked, path)
	}
	return &RunLock{flock: fl, path: path}, nil
}

func (l *RunLock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks; the lock file stays in place for the next run.
func (l *RunLock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
