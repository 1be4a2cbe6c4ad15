package launcher

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	config "leaderboard-launcher/internal/config"
	ilogger "leaderboard-launcher/internal/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

func exitErrorOrNil(code int) error {
	if code == 0 {
		return nil
	}
	return exitError{code: code}
}

type cliOptions struct {
	ConfigFile string
	Preset     string
	Evaluator  string

	CarlaRoot string
	RepoRoot  string
	OutRoot   string
	Python    string
	CarlaEgg  string

	AgentName   string
	Benchmark   string
	RouteFile   string
	AgentFile   string
	AgentConfig string

	Seed               int
	Port               int
	TrafficManagerPort int
	GPURank            int
	Timeout            int

	SkipChecks bool
	CleanViz   bool
	DryRun     bool
	JSON       bool
	Version    bool
}

var (
	exitFn               = os.Exit
	consoleIn  io.Reader = os.Stdin
	consoleOut io.Writer = os.Stdout
	consoleErr io.Writer = os.Stderr
)

func Main() {
	Run()
}

// Run is the program entrypoint for cmd/leaderboard-launcher/main.go.
func Run() {
	exitFn(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(argv)
	cmd.SetOut(consoleOut)
	cmd.SetErr(consoleErr)
	if err := cmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintf(consoleErr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	name := ilogger.ToolName
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s [flags] [route-file]", name),
		Short:         "Launch one leaderboard evaluation run for a single route file",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Fprintf(consoleOut, "%s version %s\n", name, version)
				return nil
			}

			logSuffix, keepLog := "", true
			if opts.DryRun {
				logSuffix, keepLog = "dry-run", false
			}
			exitCode := runWithLoggerAndCleanup(logSuffix, keepLog, func() int {
				cfg, ev, err := resolveFromCommand(cmd, opts, args)
				if err != nil {
					logError(err.Error())
					return 1
				}
				plan, err := buildPlan(cfg, ev)
				if err != nil {
					logError(err.Error())
					return 1
				}
				if opts.DryRun {
					return runDryRun(plan, opts.JSON)
				}
				return runLaunch(plan, opts.CleanViz)
			})
			return exitErrorOrNil(exitCode)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addRunFlags(cmd.PersistentFlags(), opts)
	fs := cmd.Flags()
	fs.BoolVarP(&opts.Version, "version", "v", false, "Print version and exit")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print the resolved command and environment without creating or launching anything")
	fs.BoolVar(&opts.JSON, "json", false, "With --dry-run: print the plan as JSON")
	fs.BoolVar(&opts.CleanViz, "clean-viz", false, "Remove the route's visualization directory before launching")

	cmd.AddCommand(
		newStatusCommand(opts),
		newVideoCommand(),
		newCleanupCommand(),
		newPresetsCommand(),
		newVersionCommand(name),
	)

	return cmd
}

// addRunFlags registers the flags shared by the root command and the
// subcommands that resolve a run configuration.
func addRunFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.leaderboard-launcher/config.*)")
	fs.StringVar(&opts.Preset, "preset", "", "Preset name (from ~/.leaderboard-launcher/presets.json, default \""+config.DefaultPresetName+"\")")
	fs.StringVar(&opts.Evaluator, "evaluator", "", "Evaluator flavor (bench2drive, leaderboard)")

	fs.StringVar(&opts.CarlaRoot, "carla-root", config.DefaultCarlaRoot, "CARLA installation root")
	fs.StringVar(&opts.RepoRoot, "repo-root", "", "Repository root; the evaluator runs here (default: current directory)")
	fs.StringVar(&opts.OutRoot, "out-root", config.DefaultOutRoot, "Output root for results, logs and visualizations")
	fs.StringVar(&opts.Python, "python", config.DefaultPython, "Python interpreter used to run the evaluator")
	fs.StringVar(&opts.CarlaEgg, "carla-egg", config.DefaultCarlaEgg, "CARLA egg name under PythonAPI/carla/dist")

	fs.StringVar(&opts.AgentName, "agent-name", "", "Agent name used in the output layout (default: preset name)")
	fs.StringVar(&opts.Benchmark, "benchmark", "", "Benchmark name used in the output layout (default: "+config.DefaultBenchmark+")")
	fs.StringVar(&opts.RouteFile, "routes", "", "Route file (also accepted as the positional argument)")
	fs.StringVar(&opts.AgentFile, "agent", "", "Agent module path")
	fs.StringVar(&opts.AgentConfig, "agent-config", "", "Agent configuration / checkpoint path")

	fs.IntVar(&opts.Seed, "seed", config.DefaultSeed, "Traffic-manager seed")
	fs.IntVar(&opts.Port, "port", config.DefaultPort, "Simulator port")
	fs.IntVar(&opts.TrafficManagerPort, "tm-port", config.DefaultTrafficManagerPort, "Traffic-manager port")
	fs.IntVar(&opts.GPURank, "gpu-rank", config.DefaultGPURank, "GPU rank passed to the evaluator")
	fs.IntVar(&opts.Timeout, "timeout", config.DefaultTimeout, "Evaluator timeout passed through as --timeout")

	fs.BoolVar(&opts.SkipChecks, "skip-checks", false, "Do not verify that required inputs exist before launch")
}

func newVersionCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(consoleOut, "%s version %s\n", name, version)
			return nil
		},
	}
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "cleanup",
		Short:         "Remove diagnostic logs left behind by dead launcher processes",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitErrorOrNil(runCleanupMode())
		},
	}
}

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "presets",
		Short:         "List the known presets",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.PresetNames()
			sort.Strings(names)
			for _, n := range names {
				_, p, err := config.ResolvePreset(n)
				if err != nil {
					continue
				}
				desc := strings.TrimSpace(p.Description)
				if desc == "" {
					desc = p.AgentFile
				}
				fmt.Fprintf(consoleOut, "%-20s %s\n", n, desc)
			}
			return nil
		},
	}
}

// runWithLoggerAndCleanup installs the diagnostic logger around fn. Helper
// commands pass a suffix so their logs never clobber a launch log of the
// same PID. On a non-zero exit the most recent logged errors are echoed to
// stderr. The log file is removed afterwards unless keepLog is set.
func runWithLoggerAndCleanup(suffix string, keepLog bool, fn func() int) (exitCode int) {
	logger, err := ilogger.NewLoggerWithSuffix(suffix)
	if err != nil {
		fmt.Fprintf(consoleErr, "ERROR: failed to initialize logger: %v\n", err)
		return 1
	}
	logger.SetRunID(uuid.NewString())
	ilogger.SetLogger(logger)

	defer func() {
		logger.Flush()
		if err := ilogger.CloseLogger(); err != nil {
			fmt.Fprintf(consoleErr, "ERROR: failed to close logger: %v\n", err)
		}

		if exitCode != 0 {
			if entries := logger.ExtractRecentErrors(10); len(entries) > 0 {
				fmt.Fprintln(consoleErr, "\n=== Recent Errors ===")
				for _, entry := range entries {
					fmt.Fprintln(consoleErr, entry)
				}
				if keepLog {
					fmt.Fprintf(consoleErr, "Log file: %s\n", logger.Path())
				}
			}
		}
		if !keepLog {
			_ = logger.RemoveLogFile()
		}
	}()
	defer runCleanupHook()

	// Clean up stale logs from previous runs.
	scheduleStartupCleanup()

	return fn()
}
