package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CleanupStats summarizes one CleanupOldLogs pass.
type CleanupStats struct {
	Scanned      int
	Deleted      int
	Kept         int
	Errors       int
	DeletedFiles []string
	KeptFiles    []string
}

var (
	removeLogFileFn = os.Remove
	globLogFiles    = filepath.Glob
	fileStatFn      = os.Lstat
	evalSymlinksFn  = filepath.EvalSymlinks
)

// CleanupOldLogs removes launcher logs in the temp directory whose owning
// process is gone (or whose PID has since been reused). The current
// process's logs, symlinks and anything resolving outside the temp directory
// are kept.
func CleanupOldLogs() (CleanupStats, error) {
	var stats CleanupStats
	tempDir := os.TempDir()

	matches, err := globLogFiles(filepath.Join(tempDir, LogGlob()))
	if err != nil {
		return stats, fmt.Errorf("glob launcher logs: %w", err)
	}

	resolvedTemp, err := evalSymlinksFn(tempDir)
	if err != nil {
		resolvedTemp = tempDir
	}

	self := os.Getpid()
	var firstErr error
	for _, path := range matches {
		pid, ok := parsePIDFromLog(path)
		if !ok {
			continue
		}
		stats.Scanned++

		keep := func() {
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
		}

		info, err := fileStatFn(path)
		if err != nil {
			stats.Errors++
			if firstErr == nil {
				firstErr = err
			}
			keep()
			continue
		}
		if unsafe, _ := isUnsafeFile(path, info, resolvedTemp); unsafe {
			keep()
			continue
		}
		if pid == self {
			keep()
			continue
		}
		if processRunningCheck(pid) && !pidReused(pid, info.ModTime()) {
			keep()
			continue
		}

		if err := removeLogFileFn(path); err != nil && !os.IsNotExist(err) {
			stats.Errors++
			if firstErr == nil {
				firstErr = err
			}
			keep()
			continue
		}
		stats.Deleted++
		stats.DeletedFiles = append(stats.DeletedFiles, path)
	}

	if firstErr != nil {
		return stats, fmt.Errorf("cleanup finished with %d error(s): %w", stats.Errors, firstErr)
	}
	return stats, nil
}

// parsePIDFromLog extracts <pid> from leaderboard-launcher-<pid>[-suffix].log.
func parsePIDFromLog(path string) (int, bool) {
	name := filepath.Base(path)
	prefix := ToolName + "-"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
		return 0, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log")
	if idx := strings.IndexByte(rest, '-'); idx >= 0 {
		rest = rest[:idx]
	}
	pid, err := strconv.Atoi(rest)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// isUnsafeFile reports whether path must not be deleted: not a regular file,
// or resolving outside tempDir.
func isUnsafeFile(path string, info os.FileInfo, tempDir string) (bool, string) {
	if info.Mode()&os.ModeSymlink != 0 {
		return true, "symlink"
	}
	if !info.Mode().IsRegular() {
		return true, "not a regular file"
	}
	resolved, err := evalSymlinksFn(path)
	if err != nil {
		return true, "unresolvable path"
	}
	rel, err := filepath.Rel(tempDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return true, "outside temp directory"
	}
	return false, ""
}
