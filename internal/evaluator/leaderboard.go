package evaluator

import (
	"path/filepath"

	config "leaderboard-launcher/internal/config"
	layout "leaderboard-launcher/internal/layout"
)

// LeaderboardEvaluator runs the stock CARLA leaderboard checked out next to
// scenario_runner at the repository root. It has no --gpu-rank flag.
type LeaderboardEvaluator struct{}

func (LeaderboardEvaluator) Name() string { return "leaderboard" }

func (LeaderboardEvaluator) Command(cfg *config.Config) string { return pythonCommand(cfg) }

func (LeaderboardEvaluator) LeaderboardRoot(cfg *config.Config) string {
	return filepath.Join(cfg.RepoRoot, "leaderboard")
}

func (LeaderboardEvaluator) ScenarioRunnerRoot(cfg *config.Config) string {
	return filepath.Join(cfg.RepoRoot, "scenario_runner")
}

func (e LeaderboardEvaluator) EntryPoint(cfg *config.Config) string {
	return filepath.Join(e.LeaderboardRoot(cfg), "leaderboard", "leaderboard_evaluator.py")
}

func (e LeaderboardEvaluator) BuildArgs(cfg *config.Config, set layout.Set) []string {
	if cfg == nil {
		return nil
	}
	return commonArgs(cfg, e.EntryPoint(cfg), set)
}
