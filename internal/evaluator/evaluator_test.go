package evaluator

import (
	"path/filepath"
	"strings"
	"testing"

	config "leaderboard-launcher/internal/config"
	layout "leaderboard-launcher/internal/layout"
)

func testInputs(t *testing.T) (*config.Config, layout.Set) {
	t.Helper()
	repo := t.TempDir()
	cfg := &config.Config{
		RepoRoot:           repo,
		OutRoot:            "out",
		AgentName:          "simlingo",
		Benchmark:          "bench2drive",
		RouteFile:          "routes/bench2drive_220.xml",
		AgentFile:          "team_code/agent_simlingo.py",
		AgentConfig:        "ckpts/model.pt",
		Seed:               7,
		Port:               2000,
		TrafficManagerPort: 2500,
		GPURank:            1,
		Timeout:            600000,
	}
	set, err := layout.Resolve(cfg)
	if err != nil {
		t.Fatalf("layout.Resolve() error = %v", err)
	}
	return cfg, set
}

func flagValues(args []string) map[string][]string {
	out := map[string][]string{}
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		name, value, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		out[name] = append(out[name], value)
	}
	return out
}

func TestBench2DriveArgs(t *testing.T) {
	cfg, set := testInputs(t)
	ev := Bench2DriveEvaluator{}

	args := ev.BuildArgs(cfg, set)
	if len(args) < 2 || args[0] != "-u" || args[1] != ev.EntryPoint(cfg) {
		t.Fatalf("args should start with -u <entry>, got %v", args)
	}
	wantEntry := filepath.Join(cfg.RepoRoot, "Bench2Drive", "leaderboard", "leaderboard", "leaderboard_evaluator.py")
	if ev.EntryPoint(cfg) != wantEntry {
		t.Errorf("EntryPoint() = %q, want %q", ev.EntryPoint(cfg), wantEntry)
	}

	want := map[string]string{
		"routes":               set.RouteFile,
		"repetitions":          "1",
		"track":                "SENSORS",
		"checkpoint":           set.ResultFile,
		"timeout":              "600000",
		"agent":                set.AgentFile,
		"agent-config":         set.AgentConfig,
		"traffic-manager-seed": "7",
		"port":                 "2000",
		"traffic-manager-port": "2500",
		"gpu-rank":             "1",
	}
	got := flagValues(args)
	if len(got) != len(want) {
		t.Errorf("got %d distinct flags, want %d: %v", len(got), len(want), args)
	}
	for name, value := range want {
		values := got[name]
		if len(values) != 1 {
			t.Errorf("--%s appears %d times, want exactly once", name, len(values))
			continue
		}
		if values[0] != value {
			t.Errorf("--%s = %q, want %q", name, values[0], value)
		}
	}
}

func TestLeaderboardArgsOmitGPURank(t *testing.T) {
	cfg, set := testInputs(t)
	ev := LeaderboardEvaluator{}

	got := flagValues(ev.BuildArgs(cfg, set))
	if _, ok := got["gpu-rank"]; ok {
		t.Error("leaderboard flavor must not pass --gpu-rank")
	}
	if len(got["routes"]) != 1 || got["routes"][0] != set.RouteFile {
		t.Errorf("--routes = %v", got["routes"])
	}
	if ev.LeaderboardRoot(cfg) != filepath.Join(cfg.RepoRoot, "leaderboard") {
		t.Errorf("LeaderboardRoot() = %q", ev.LeaderboardRoot(cfg))
	}
	if ev.ScenarioRunnerRoot(cfg) != filepath.Join(cfg.RepoRoot, "scenario_runner") {
		t.Errorf("ScenarioRunnerRoot() = %q", ev.ScenarioRunnerRoot(cfg))
	}
}

func TestCommandDefaultsToPython(t *testing.T) {
	if got := (Bench2DriveEvaluator{}).Command(&config.Config{}); got != "python" {
		t.Errorf("Command() = %q, want python", got)
	}
	if got := (LeaderboardEvaluator{}).Command(&config.Config{Python: "/venv/bin/python3"}); got != "/venv/bin/python3" {
		t.Errorf("Command() = %q, want /venv/bin/python3", got)
	}
	if args := (Bench2DriveEvaluator{}).BuildArgs(nil, layout.Set{}); args != nil {
		t.Errorf("BuildArgs(nil) = %v, want nil", args)
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "bench2drive", false},
		{"  Bench2Drive ", "bench2drive", false},
		{"leaderboard", "leaderboard", false},
		{"carla-garage", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ev, err := Select(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Select(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && ev.Name() != tt.want {
				t.Errorf("Select(%q).Name() = %q, want %q", tt.input, ev.Name(), tt.want)
			}
		})
	}

	for _, name := range Names() {
		ev, err := Select(name)
		if err != nil || ev.Name() != name {
			t.Errorf("Select(%q) = %v, %v; every listed name must select itself", name, ev, err)
		}
	}
}
