package launcher

import (
	"fmt"
	"sync"

	config "leaderboard-launcher/internal/config"
	ilogger "leaderboard-launcher/internal/logger"
)

var (
	cleanupLogsFn  = ilogger.CleanupOldLogs
	startupCleanup sync.WaitGroup
)

func runCleanupMode() int {
	stats, err := cleanupLogsFn()
	if err != nil {
		fmt.Fprintf(consoleErr, "Cleanup failed: %v\n", err)
		return 1
	}

	fmt.Fprintln(consoleOut, "Cleanup completed")
	fmt.Fprintf(consoleOut, "Files scanned: %d\n", stats.Scanned)
	fmt.Fprintf(consoleOut, "Files deleted: %d\n", stats.Deleted)
	for _, f := range stats.DeletedFiles {
		fmt.Fprintf(consoleOut, "  - %s\n", f)
	}
	fmt.Fprintf(consoleOut, "Files kept: %d\n", stats.Kept)
	for _, f := range stats.KeptFiles {
		fmt.Fprintf(consoleOut, "  - %s\n", f)
	}
	if stats.Errors > 0 {
		fmt.Fprintf(consoleOut, "Deletion errors: %d\n", stats.Errors)
	}
	return 0
}

// scheduleStartupCleanup removes stale logs in the background while the
// run proceeds. LEADERBOARD_LAUNCHER_SKIP_CLEANUP disables it.
func scheduleStartupCleanup() {
	if config.EnvFlagEnabled("LEADERBOARD_LAUNCHER_SKIP_CLEANUP") {
		return
	}
	fn := cleanupLogsFn
	startupCleanup.Add(1)
	go func() {
		defer startupCleanup.Done()
		stats, err := fn()
		if err != nil {
			logWarn(fmt.Sprintf("cleanupOldLogs: %v", err))
			return
		}
		if stats.Deleted > 0 {
			logDebug(fmt.Sprintf("cleanupOldLogs: removed %d stale log(s)", stats.Deleted))
		}
	}()
}

// runCleanupHook waits for the startup cleanup so it never outlives the
// logger it reports to.
func runCleanupHook() {
	startupCleanup.Wait()
}
