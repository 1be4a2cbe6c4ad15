package evaluator

import (
	"path/filepath"
	"strconv"

	config "leaderboard-launcher/internal/config"
	layout "leaderboard-launcher/internal/layout"
)

// Bench2DriveEvaluator runs the Bench2Drive fork of the leaderboard, vendored
// under <repo>/Bench2Drive. It additionally accepts --gpu-rank.
type Bench2DriveEvaluator struct{}

func (Bench2DriveEvaluator) Name() string { return "bench2drive" }

func (Bench2DriveEvaluator) Command(cfg *config.Config) string { return pythonCommand(cfg) }

func (Bench2DriveEvaluator) LeaderboardRoot(cfg *config.Config) string {
	return filepath.Join(cfg.RepoRoot, "Bench2Drive", "leaderboard")
}

func (Bench2DriveEvaluator) ScenarioRunnerRoot(cfg *config.Config) string {
	return filepath.Join(cfg.RepoRoot, "Bench2Drive", "scenario_runner")
}

func (e Bench2DriveEvaluator) EntryPoint(cfg *config.Config) string {
	return filepath.Join(e.LeaderboardRoot(cfg), "leaderboard", "leaderboard_evaluator.py")
}

func (e Bench2DriveEvaluator) BuildArgs(cfg *config.Config, set layout.Set) []string {
	if cfg == nil {
		return nil
	}
	args := commonArgs(cfg, e.EntryPoint(cfg), set)
	return append(args, "--gpu-rank="+strconv.Itoa(cfg.GPURank))
}
