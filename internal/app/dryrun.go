package launcher

import (
	"fmt"
	"strings"

	layout "leaderboard-launcher/internal/layout"

	"github.com/goccy/go-json"
)

type dryRunPaths struct {
	RouteID     string `json:"route_id"`
	RouteFile   string `json:"route_file"`
	ResultFile  string `json:"result_file"`
	LogFile     string `json:"log_file"`
	ErrorFile   string `json:"error_file"`
	VizDir      string `json:"viz_dir"`
	AgentFile   string `json:"agent_file"`
	AgentConfig string `json:"agent_config"`
}

type dryRunReport struct {
	Preset    string            `json:"preset"`
	Evaluator string            `json:"evaluator"`
	Command   string            `json:"command"`
	Args      []string          `json:"args"`
	Dir       string            `json:"dir"`
	Env       map[string]string `json:"env"`
	Paths     dryRunPaths       `json:"paths"`
	Dirs      []string          `json:"dirs"`
	Warnings  []string          `json:"warnings,omitempty"`
}

func newDryRunReport(plan *launchPlan) dryRunReport {
	p := plan.Paths
	report := dryRunReport{
		Preset:    plan.Config.Preset,
		Evaluator: plan.Evaluator.Name(),
		Command:   plan.Command,
		Args:      plan.Args,
		Dir:       plan.Config.RepoRoot,
		Env:       plan.Env.Map(),
		Paths: dryRunPaths{
			RouteID:     p.RouteID,
			RouteFile:   p.RouteFile,
			ResultFile:  p.ResultFile,
			LogFile:     p.LogFile,
			ErrorFile:   p.ErrorFile,
			VizDir:      p.VizDir,
			AgentFile:   p.AgentFile,
			AgentConfig: p.AgentConfig,
		},
		Dirs: p.OutputDirs(),
	}
	if !plan.Config.SkipChecks {
		if err := layout.CheckInputs(plan.requiredInputs()...); err != nil {
			report.Warnings = strings.Split(err.Error(), "\n")
		}
	}
	return report
}

// runDryRun prints what a launch would do. Nothing is created or started;
// missing inputs are reported as warnings.
func runDryRun(plan *launchPlan, asJSON bool) int {
	report := newDryRunReport(plan)

	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logError(fmt.Sprintf("failed to encode dry-run report: %v", err))
			return 1
		}
		fmt.Fprintln(consoleOut, string(data))
		return 0
	}

	fmt.Fprintf(consoleOut, "cd %s\n", report.Dir)
	for _, kv := range plan.Env.Pairs() {
		fmt.Fprintf(consoleOut, "export %s\n", kv)
	}
	for _, dir := range report.Dirs {
		fmt.Fprintf(consoleOut, "mkdir -p %s\n", dir)
	}
	fmt.Fprintln(consoleOut, plan.commandLine())
	fmt.Fprintf(consoleOut, "# stdout -> %s\n# stderr -> %s\n", report.Paths.LogFile, report.Paths.ErrorFile)
	for _, w := range report.Warnings {
		fmt.Fprintf(consoleOut, "# warning: %s\n", w)
	}
	return 0
}
