package launcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	config "leaderboard-launcher/internal/config"
)

// fakeEvaluator is run with "sh -u <entry> ...": it reports what it saw and
// exits with $EVAL_EXIT.
const fakeEvaluator = `echo "cwd=$(pwd)"
echo "pythonpath=$PYTHONPATH"
echo "save=$SAVE_PATH"
echo "carla=$CARLA_ROOT"
for a in "$@"; do echo "arg=$a"; done
echo "evaluator-stderr" >&2
exit ${EVAL_EXIT:-0}
`

type testRepo struct {
	Repo      string
	Carla     string
	Route     string
	Agent     string
	Ckpt      string
	Entry     string
	OutRoot   string
	BaseFlags []string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

// newTestRepo lays out a minimal repository with a bench2drive evaluator
// entry point and isolates HOME, TMPDIR and the console writers.
func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	isolateEnv(t)

	root := t.TempDir()
	r := &testRepo{
		Repo:    filepath.Join(root, "repo"),
		Carla:   filepath.Join(root, "carla"),
		OutRoot: filepath.Join(root, "out"),
	}
	r.Route = filepath.Join(r.Repo, "leaderboard", "data", "bench2drive_split", "bench2drive_7.xml")
	r.Agent = filepath.Join(r.Repo, "team_code", "agent_test.py")
	r.Ckpt = filepath.Join(r.Repo, "ckpts", "model.pt")
	r.Entry = filepath.Join(r.Repo, "Bench2Drive", "leaderboard", "leaderboard", "leaderboard_evaluator.py")

	writeFile(t, r.Route, "<routes/>")
	writeFile(t, r.Agent, "")
	writeFile(t, r.Ckpt, "")
	writeFile(t, r.Entry, fakeEvaluator)
	if err := os.MkdirAll(r.Carla, 0o755); err != nil {
		t.Fatal(err)
	}

	r.BaseFlags = []string{
		"--repo-root", r.Repo,
		"--carla-root", r.Carla,
		"--out-root", r.OutRoot,
		"--python", "sh",
		"--agent", r.Agent,
		"--agent-config", r.Ckpt,
		"--routes", r.Route,
	}
	return r
}

func (r *testRepo) baseDir() string {
	return filepath.Join(r.OutRoot, config.DefaultPresetName, config.DefaultBenchmark, "1")
}

// pythonPath is the PYTHONPATH expected for the bench2drive flavor with an
// empty inherited PYTHONPATH.
func (r *testRepo) pythonPath() string {
	return strings.Join([]string{
		filepath.Join(r.Carla, "PythonAPI", "carla"),
		filepath.Join(r.Carla, "PythonAPI", "carla", "dist", config.DefaultCarlaEgg),
		r.Repo,
		filepath.Join(r.Repo, "Bench2Drive", "leaderboard"),
		filepath.Join(r.Repo, "Bench2Drive", "scenario_runner"),
	}, string(os.PathListSeparator))
}

func isolateEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("TMPDIR", t.TempDir())
	t.Setenv("LEADERBOARD_LAUNCHER_SKIP_CLEANUP", "1")
	t.Setenv("PYTHONPATH", "")
	t.Setenv("NO_COLOR", "1")
	config.ResetPresetsCacheForTest()
	t.Cleanup(config.ResetPresetsCacheForTest)
}

func captureConsole(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	oldIn, oldOut, oldErr := consoleIn, consoleOut, consoleErr
	consoleIn, consoleOut, consoleErr = strings.NewReader(""), stdout, stderr
	t.Cleanup(func() { consoleIn, consoleOut, consoleErr = oldIn, oldOut, oldErr })
	return stdout, stderr
}

func withArgs(base []string, extra ...string) []string {
	return append(append([]string(nil), base...), extra...)
}
