package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	config "leaderboard-launcher/internal/config"
	environ "leaderboard-launcher/internal/environ"
	evaluator "leaderboard-launcher/internal/evaluator"
	executor "leaderboard-launcher/internal/executor"
	layout "leaderboard-launcher/internal/layout"
	utils "leaderboard-launcher/internal/utils"
)

const stderrTailLines = 20

var (
	runExecutorFn = executor.Run
	removeAllFn   = os.RemoveAll
)

// launchPlan is everything needed to start the evaluator, resolved up front
// so a dry run and a real launch see the same values.
type launchPlan struct {
	Config    *config.Config
	Evaluator evaluator.Evaluator
	Paths     layout.Set
	Env       environ.Snapshot
	Command   string
	Args      []string
}

func buildPlan(cfg *config.Config, ev evaluator.Evaluator) (*launchPlan, error) {
	set, err := layout.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	env := environ.FromProcess(environ.Roots{
		CarlaRoot:          cfg.CarlaRoot,
		CarlaEgg:           cfg.CarlaEgg,
		RepoRoot:           cfg.RepoRoot,
		LeaderboardRoot:    ev.LeaderboardRoot(cfg),
		ScenarioRunnerRoot: ev.ScenarioRunnerRoot(cfg),
		SavePath:           set.VizDir,
	})
	return &launchPlan{
		Config:    cfg,
		Evaluator: ev,
		Paths:     set,
		Env:       env,
		Command:   ev.Command(cfg),
		Args:      ev.BuildArgs(cfg, set),
	}, nil
}

// requiredInputs lists what must exist before the evaluator can start.
func (p *launchPlan) requiredInputs() []layout.Input {
	return []layout.Input{
		{Name: "route file", Path: p.Paths.RouteFile},
		{Name: "agent file", Path: p.Paths.AgentFile},
		{Name: "agent config", Path: p.Paths.AgentConfig},
		{Name: "carla root", Path: p.Config.CarlaRoot, IsDir: true},
		{Name: "repo root", Path: p.Config.RepoRoot, IsDir: true},
		{Name: "evaluator entry point", Path: p.Evaluator.EntryPoint(p.Config)},
	}
}

func (p *launchPlan) commandLine() string {
	return strings.Join(append([]string{p.Command}, p.Args...), " ")
}

func (p *launchPlan) lockPath() string {
	return p.Paths.ResultFile + ".lock"
}

func runLaunch(plan *launchPlan, cleanViz bool) int {
	cfg := plan.Config
	logInfo(fmt.Sprintf("Resolved run: evaluator=%s preset=%s route=%s seed=%d", plan.Evaluator.Name(), cfg.Preset, plan.Paths.RouteID, cfg.Seed))

	if cfg.SkipChecks {
		logWarn("Skipping input checks (--skip-checks)")
	} else if err := layout.CheckInputs(plan.requiredInputs()...); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			logError(line)
		}
		return 1
	}

	// The lock lives next to the result file, so only that directory is
	// created before it is held. Nothing else is touched until then.
	if err := layout.EnsureDirs(filepath.Dir(plan.lockPath())); err != nil {
		logError(err.Error())
		return 1
	}
	lock, err := executor.AcquireRunLock(plan.lockPath())
	if err != nil {
		logError(err.Error())
		return 1
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logWarn(err.Error())
		}
	}()
	logInfo(fmt.Sprintf("Holding route lock %s", lock.Path()))

	if cleanViz {
		if err := removeAllFn(plan.Paths.VizDir); err != nil {
			logError(fmt.Sprintf("failed to clear visualization directory %s: %v", plan.Paths.VizDir, err))
			return 1
		}
	}
	if err := layout.EnsureDirs(plan.Paths.OutputDirs()...); err != nil {
		logError(err.Error())
		return 1
	}

	restoreKillDelay := executor.SetForceKillDelay(config.ResolveForceKillDelay())
	defer restoreKillDelay()
	logInfo(fmt.Sprintf("Force-kill delay: %s", executor.ForceKillDelay()))

	if pythonPath, ok := plan.Env.Get(environ.PythonPathVar); ok {
		logDebug("Evaluator PYTHONPATH=" + pythonPath)
	}
	printBanner(consoleErr, plan)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runExecutorFn(ctx, executor.Spec{
		Name:      "evaluator",
		Command:   plan.Command,
		Args:      plan.Args,
		Dir:       cfg.RepoRoot,
		Env:       plan.Env.Merge(os.Environ()),
		Stdin:     consoleIn,
		Stdout:    consoleOut,
		Stderr:    consoleErr,
		StdoutLog: plan.Paths.LogFile,
		StderrLog: plan.Paths.ErrorFile,
	})
	if err != nil {
		logError(err.Error())
		if errors.Is(err, os.ErrNotExist) {
			logError(fmt.Sprintf("is %q installed and on PATH?", plan.Command))
		}
		return res.ExitCode
	}

	if res.Interrupted {
		logWarn(fmt.Sprintf("Evaluator interrupted, exit code %d", res.ExitCode))
	}
	if res.OutputErr != nil {
		logWarn(fmt.Sprintf("Output duplication incomplete: %v", res.OutputErr))
	}
	if res.ExitCode != 0 {
		logError(fmt.Sprintf("Evaluator exited with code %d", res.ExitCode))
		printStderrTail(res.StderrTail, plan.Paths.ErrorFile)
	}
	return res.ExitCode
}

func printStderrTail(tail, errorFile string) {
	lines := utils.LastLines(utils.SanitizeOutput(tail), stderrTailLines)
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(consoleErr, "\n=== Evaluator stderr (last %d lines) ===\n", len(lines))
	for _, line := range lines {
		fmt.Fprintln(consoleErr, utils.SafeTruncate(line, 500))
	}
	fmt.Fprintf(consoleErr, "Full stderr: %s\n", errorFile)
}

// relToRepo shortens path for display when it lives under the repo root.
func relToRepo(repo, path string) string {
	rel, err := filepath.Rel(repo, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
