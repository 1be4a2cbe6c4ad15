package launcher

import (
	"errors"
	"fmt"
	"os"
	"strings"

	config "leaderboard-launcher/internal/config"
	evaluator "leaderboard-launcher/internal/evaluator"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var getwdFn = os.Getwd

// resolver applies the precedence flag > environment/config file > preset >
// built-in default to one setting at a time.
type resolver struct {
	flags *pflag.FlagSet
	v     *viper.Viper
}

func (r resolver) str(name, flagVal, presetVal, def string) string {
	if r.flags.Changed(name) {
		return strings.TrimSpace(flagVal)
	}
	if val := strings.TrimSpace(r.v.GetString(name)); val != "" {
		return val
	}
	if val := strings.TrimSpace(presetVal); val != "" {
		return val
	}
	return def
}

// integer falls back to flagVal, which holds the flag default when the flag
// was not given.
func (r resolver) integer(name string, flagVal int) (int, error) {
	if r.flags.Changed(name) || !r.v.IsSet(name) {
		return flagVal, nil
	}
	n, err := cast.ToIntE(r.v.Get(name))
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return n, nil
}

func (r resolver) boolean(name string, flagVal bool) (bool, error) {
	if r.flags.Changed(name) || !r.v.IsSet(name) {
		return flagVal, nil
	}
	b, err := cast.ToBoolE(r.v.Get(name))
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return b, nil
}

func resolveFromCommand(cmd *cobra.Command, opts *cliOptions, args []string) (*config.Config, evaluator.Evaluator, error) {
	v, err := config.NewViper(opts.ConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return resolveConfig(resolver{flags: cmd.Flags(), v: v}, opts, args)
}

func resolveConfig(r resolver, opts *cliOptions, args []string) (*config.Config, evaluator.Evaluator, error) {
	if r.flags.Changed("preset") && strings.TrimSpace(opts.Preset) == "" {
		return nil, nil, errors.New("--preset flag requires a value")
	}
	presetName, preset, err := config.ResolvePreset(r.str("preset", opts.Preset, "", ""))
	if err != nil {
		return nil, nil, fmt.Errorf("--preset invalid value: %w", err)
	}

	ev, err := evaluator.Select(r.str("evaluator", opts.Evaluator, preset.Evaluator, evaluator.DefaultName))
	if err != nil {
		return nil, nil, err
	}

	cfg := &config.Config{
		Preset:      presetName,
		Evaluator:   ev.Name(),
		Python:      r.str("python", opts.Python, "", config.DefaultPython),
		CarlaEgg:    r.str("carla-egg", opts.CarlaEgg, "", config.DefaultCarlaEgg),
		OutRoot:     r.str("out-root", opts.OutRoot, "", config.DefaultOutRoot),
		AgentName:   r.str("agent-name", opts.AgentName, preset.AgentName, presetName),
		Benchmark:   r.str("benchmark", opts.Benchmark, preset.Benchmark, config.DefaultBenchmark),
		AgentFile:   r.str("agent", opts.AgentFile, preset.AgentFile, ""),
		AgentConfig: r.str("agent-config", opts.AgentConfig, preset.AgentConfig, ""),
	}

	cwd, err := getwdFn()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	if cfg.RepoRoot, err = config.ExpandPath(r.str("repo-root", opts.RepoRoot, "", cwd), cwd); err != nil {
		return nil, nil, fmt.Errorf("repo root: %w", err)
	}
	if cfg.CarlaRoot, err = config.ExpandPath(r.str("carla-root", opts.CarlaRoot, "", config.DefaultCarlaRoot), cfg.RepoRoot); err != nil {
		return nil, nil, fmt.Errorf("carla root: %w", err)
	}

	route := r.str("routes", opts.RouteFile, "", "")
	if len(args) > 0 {
		positional := strings.TrimSpace(args[0])
		if r.flags.Changed("routes") && route != positional {
			return nil, nil, fmt.Errorf("route file given twice: --routes=%s and %s", route, positional)
		}
		route = positional
	}
	if route == "" {
		return nil, nil, errors.New("route file required (pass it as an argument or via --routes)")
	}
	cfg.RouteFile = route

	ints := []struct {
		name string
		val  int
		dst  *int
	}{
		{"seed", opts.Seed, &cfg.Seed},
		{"port", opts.Port, &cfg.Port},
		{"tm-port", opts.TrafficManagerPort, &cfg.TrafficManagerPort},
		{"gpu-rank", opts.GPURank, &cfg.GPURank},
		{"timeout", opts.Timeout, &cfg.Timeout},
	}
	for _, it := range ints {
		if *it.dst, err = r.integer(it.name, it.val); err != nil {
			return nil, nil, err
		}
	}
	if cfg.SkipChecks, err = r.boolean("skip-checks", opts.SkipChecks); err != nil {
		return nil, nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, ev, nil
}

func validateConfig(cfg *config.Config) error {
	var errs []error
	for _, p := range []struct {
		name string
		val  int
	}{{"port", cfg.Port}, {"tm-port", cfg.TrafficManagerPort}} {
		if p.val < 1 || p.val > 65535 {
			errs = append(errs, fmt.Errorf("--%s must be between 1 and 65535, got %d", p.name, p.val))
		}
	}
	if cfg.Port == cfg.TrafficManagerPort {
		errs = append(errs, fmt.Errorf("--port and --tm-port must differ (both %d)", cfg.Port))
	}
	if cfg.Seed < 0 {
		errs = append(errs, fmt.Errorf("--seed must be non-negative, got %d", cfg.Seed))
	}
	if cfg.GPURank < 0 {
		errs = append(errs, fmt.Errorf("--gpu-rank must be non-negative, got %d", cfg.GPURank))
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--timeout must be positive, got %d", cfg.Timeout))
	}
	if cfg.AgentFile == "" {
		errs = append(errs, errors.New("agent file is not set (use --agent or a preset)"))
	}
	if cfg.AgentConfig == "" {
		errs = append(errs, errors.New("agent config is not set (use --agent-config or a preset)"))
	}
	return errors.Join(errs...)
}
