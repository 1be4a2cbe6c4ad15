package evaluator

import (
	"strconv"
	"strings"

	config "leaderboard-launcher/internal/config"
	layout "leaderboard-launcher/internal/layout"
)

// Evaluator describes one flavor of the leaderboard evaluation harness: where
// its sources live under the repository and which flags it accepts.
type Evaluator interface {
	Name() string
	Command(cfg *config.Config) string
	LeaderboardRoot(cfg *config.Config) string
	ScenarioRunnerRoot(cfg *config.Config) string
	EntryPoint(cfg *config.Config) string
	BuildArgs(cfg *config.Config, set layout.Set) []string
}

const (
	Repetitions = 1
	Track       = "SENSORS"
)

func pythonCommand(cfg *config.Config) string {
	if cfg != nil {
		if python := strings.TrimSpace(cfg.Python); python != "" {
			return python
		}
	}
	return config.DefaultPython
}

// commonArgs is the flag contract shared by every flavor, in invocation
// order. Each flag appears exactly once.
func commonArgs(cfg *config.Config, entry string, set layout.Set) []string {
	return []string{
		"-u",
		entry,
		"--routes=" + set.RouteFile,
		"--repetitions=" + strconv.Itoa(Repetitions),
		"--track=" + Track,
		"--checkpoint=" + set.ResultFile,
		"--timeout=" + strconv.Itoa(cfg.Timeout),
		"--agent=" + set.AgentFile,
		"--agent-config=" + set.AgentConfig,
		"--traffic-manager-seed=" + strconv.Itoa(cfg.Seed),
		"--port=" + strconv.Itoa(cfg.Port),
		"--traffic-manager-port=" + strconv.Itoa(cfg.TrafficManagerPort),
	}
}
