package logger

import (
	"errors"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

func pidToInt32(pid int) (int32, bool) {
	if pid <= 0 || pid > math.MaxInt32 {
		return 0, false
	}
	return int32(pid), true
}

// isProcessRunning reports whether pid appears to be alive. Inspection errors
// other than "not running" count as alive so a live launcher's log survives.
func isProcessRunning(pid int) bool {
	pid32, ok := pidToInt32(pid)
	if !ok {
		return false
	}

	exists, err := process.PidExists(pid32)
	if err == nil {
		return exists
	}
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return false
	}
	return true
}

// processStartTime returns when pid started, or the zero time if unknown.
func processStartTime(pid int) time.Time {
	pid32, ok := pidToInt32(pid)
	if !ok {
		return time.Time{}
	}

	proc, err := process.NewProcess(pid32)
	if err != nil {
		return time.Time{}
	}

	ms, err := proc.CreateTime()
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// pidReused reports whether the live process pid started after the log file
// was last written, meaning the file belongs to an earlier process.
func pidReused(pid int, logModTime time.Time) bool {
	start := processStartTimeFn(pid)
	if start.IsZero() || logModTime.IsZero() {
		return false
	}
	return start.After(logModTime.Add(time.Second))
}

var (
	processRunningCheck = isProcessRunning
	processStartTimeFn  = processStartTime
)
