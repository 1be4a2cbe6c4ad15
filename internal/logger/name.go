package logger

// ToolName prefixes every diagnostic log file written by the launcher.
const ToolName = "leaderboard-launcher"

// LogGlob matches launcher log files inside dir's listing.
func LogGlob() string { return ToolName + "-*.log" }
