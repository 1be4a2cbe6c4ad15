package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the fully resolved parameters of one evaluation run.
type Config struct {
	Preset    string
	Evaluator string // "bench2drive" or "leaderboard"

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
}

// Built-in defaults used when neither a flag, the environment, the config
// file nor a preset supplies a value.
const (
	DefaultCarlaRoot          = "~/software/carla0915"
	DefaultOutRoot            = "eval_results/Bench2Drive"
	DefaultPython             = "python"
	DefaultCarlaEgg           = "carla-0.9.15-py3.7-linux-x86_64.egg"
	DefaultBenchmark          = "bench2drive"
	DefaultPort               = 2000
	DefaultTrafficManagerPort = 2500
	DefaultSeed               = 1
	DefaultGPURank            = 0
	DefaultTimeout            = 600000
)

// EnvFlagEnabled returns true when the environment variable exists and is not
// explicitly set to a falsey value ("0/false/no/off").
func EnvFlagEnabled(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

func ValidatePresetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("preset name is empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-', r == '_':
		default:
			return fmt.Errorf("preset name %q contains invalid character %q", name, r)
		}
	}
	return nil
}

// ExpandPath expands a leading "~" and makes raw absolute. Relative paths are
// joined onto base; an empty base means the current directory.
func ExpandPath(raw, base string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	expanded := raw
	if raw == "~" || strings.HasPrefix(raw, "~/") || strings.HasPrefix(raw, "~\\") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if raw == "~" {
			expanded = home
		} else {
			expanded = home + raw[1:]
		}
	}

	if !filepath.IsAbs(expanded) && base != "" {
		expanded = filepath.Join(base, expanded)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

const (
	defaultForceKillDelay = 5 * time.Second
	maxForceKillDelay     = 10 * time.Minute
)

// ResolveForceKillDelay reads LEADERBOARD_LAUNCHER_FORCE_KILL_DELAY (seconds):
// how long the evaluator gets between SIGTERM and a hard kill.
func ResolveForceKillDelay() time.Duration {
	raw := strings.TrimSpace(os.Getenv("LEADERBOARD_LAUNCHER_FORCE_KILL_DELAY"))
	if raw == "" {
		return defaultForceKillDelay
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultForceKillDelay
	}
	delay := time.Duration(value) * time.Second
	if delay > maxForceKillDelay {
		return maxForceKillDelay
	}
	return delay
}
