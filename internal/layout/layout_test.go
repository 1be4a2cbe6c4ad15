package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	config "leaderboard-launcher/internal/config"
)

func TestRouteID(t *testing.T) {
	tests := []struct {
		name      string
		route     string
		benchmark string
		want      string
	}{
		{"bench2drive pads to three", "/data/bench2drive_split/bench2drive_7.xml", "bench2drive", "007"},
		{"bench2drive case-insensitive", "routes_42.xml", "Bench2Drive", "042"},
		{"other benchmark pads to two", "/data/longest6_3.xml", "longest6", "03"},
		{"already wide enough", "routes_1711.xml", "bench2drive", "1711"},
		{"no underscore", "/data/5.xml", "bench2drive", "005"},
		{"non numeric suffix", "town05_short.xml", "longest6", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RouteID(tt.route, tt.benchmark); got != tt.want {
				t.Errorf("RouteID(%q, %q) = %q, want %q", tt.route, tt.benchmark, got, tt.want)
			}
		})
	}
}

func testConfig(repo string) *config.Config {
	return &config.Config{
		RepoRoot:    repo,
		OutRoot:     "eval_results/Bench2Drive",
		AgentName:   "simlingo",
		Benchmark:   "bench2drive",
		RouteFile:   "leaderboard/data/bench2drive_split/bench2drive_12.xml",
		AgentFile:   "team_code/agent_simlingo.py",
		AgentConfig: "/ckpts/model.pt",
		Seed:        3,
	}
}

func TestResolve(t *testing.T) {
	repo := t.TempDir()
	set, err := Resolve(testConfig(repo))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	base := filepath.Join(repo, "eval_results", "Bench2Drive", "simlingo", "bench2drive", "3")
	want := Set{
		RouteID:     "012",
		BaseDir:     base,
		RouteFile:   filepath.Join(repo, "leaderboard", "data", "bench2drive_split", "bench2drive_12.xml"),
		ResultFile:  filepath.Join(base, "res", "012_res.json"),
		LogFile:     filepath.Join(base, "out", "012_out.log"),
		ErrorFile:   filepath.Join(base, "err", "012_err.log"),
		VizDir:      filepath.Join(base, "viz", "012"),
		AgentFile:   filepath.Join(repo, "team_code", "agent_simlingo.py"),
		AgentConfig: filepath.Clean("/ckpts/model.pt"),
	}
	if filepath.VolumeName(repo) != "" {
		want.AgentConfig = set.AgentConfig
	}
	if set != want {
		t.Fatalf("Resolve() =\n%+v\nwant\n%+v", set, want)
	}

	for _, p := range []string{set.RouteFile, set.ResultFile, set.LogFile, set.ErrorFile, set.VizDir, set.AgentFile, set.AgentConfig} {
		if !filepath.IsAbs(p) {
			t.Errorf("path %q is not absolute", p)
		}
	}
}

func TestResolveRejectsIncompleteConfig(t *testing.T) {
	repo := t.TempDir()

	if _, err := Resolve(nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := testConfig("relative/repo")
	if _, err := Resolve(cfg); err == nil {
		t.Error("expected error for relative repo root")
	}

	cfg = testConfig(repo)
	cfg.RouteFile = " "
	if _, err := Resolve(cfg); err == nil || !strings.Contains(err.Error(), "route file") {
		t.Errorf("expected route file error, got %v", err)
	}

	cfg = testConfig(repo)
	cfg.OutRoot = ""
	if _, err := Resolve(cfg); err == nil {
		t.Error("expected error for empty output root")
	}
}

func TestOutputDirs(t *testing.T) {
	set, err := Resolve(testConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	dirs := set.OutputDirs()
	want := []string{
		filepath.Join(set.BaseDir, "res"),
		filepath.Join(set.BaseDir, "out"),
		filepath.Join(set.BaseDir, "err"),
		set.VizDir,
	}
	if len(dirs) != len(want) {
		t.Fatalf("OutputDirs() = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("OutputDirs()[%d] = %q, want %q", i, dirs[i], want[i])
		}
	}
}

func TestEnsureDirsIsIdempotent(t *testing.T) {
	set, err := Resolve(testConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := EnsureDirs(set.OutputDirs()...); err != nil {
			t.Fatalf("EnsureDirs() pass %d error = %v", i+1, err)
		}
	}
	for _, dir := range set.OutputDirs() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s missing after EnsureDirs: %v", dir, err)
		}
	}
}

func TestEnsureDirsFailure(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := EnsureDirs(filepath.Join(root, "ok"), filepath.Join(blocker, "child"))
	if err == nil {
		t.Fatal("expected error when a path component is a file")
	}
	if !strings.Contains(err.Error(), "blocker") {
		t.Errorf("error should name the failing directory: %v", err)
	}

	prev := mkdirAllFn
	t.Cleanup(func() { mkdirAllFn = prev })
	denied := errors.New("permission denied")
	mkdirAllFn = func(string, os.FileMode) error { return denied }
	if err := EnsureDirs(filepath.Join(root, "x")); !errors.Is(err, denied) {
		t.Errorf("EnsureDirs() error = %v, want wrapped %v", err, denied)
	}
}

func TestCheckInputs(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "route.xml")
	if err := os.WriteFile(file, []byte("<routes/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CheckInputs(
		Input{Name: "route file", Path: file},
		Input{Name: "repo root", Path: root, IsDir: true},
	); err != nil {
		t.Fatalf("CheckInputs() unexpected error: %v", err)
	}

	err := CheckInputs(
		Input{Name: "route file", Path: filepath.Join(root, "missing.xml")},
		Input{Name: "carla root", Path: file, IsDir: true},
		Input{Name: "agent file"},
	)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	for _, part := range []string{"route file does not exist", "carla root is not a directory", "agent file is not set"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("error %q missing %q", err.Error(), part)
		}
	}
}
