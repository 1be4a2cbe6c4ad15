// Package environ builds the environment handed to the evaluator process.
package environ

import (
	"os"
	"path/filepath"
	"strings"
)

// Variable names exported to the evaluator.
const (
	CarlaRootVar          = "CARLA_ROOT"
	ScenarioRunnerRootVar = "SCENARIO_RUNNER_ROOT"
	LeaderboardRootVar    = "LEADERBOARD_ROOT"
	SavePathVar           = "SAVE_PATH"
	PythonPathVar         = "PYTHONPATH"
)

// Roots are the directories the snapshot is derived from.
type Roots struct {
	CarlaRoot          string
	CarlaEgg           string
	RepoRoot           string
	LeaderboardRoot    string
	ScenarioRunnerRoot string
	SavePath           string
}

// Snapshot is an ordered set of variables layered over the inherited
// environment. It is built once and never mutated after Build returns.
type Snapshot struct {
	names  []string
	values map[string]string
}

// SearchPath returns the fixed, ordered PYTHONPATH entries for roots followed
// by existing when it is non-empty. Entries are joined with the OS list
// separator.
func SearchPath(roots Roots, existing string) string {
	entries := []string{
		filepath.Join(roots.CarlaRoot, "PythonAPI", "carla"),
		filepath.Join(roots.CarlaRoot, "PythonAPI", "carla", "dist", roots.CarlaEgg),
		roots.RepoRoot,
		roots.LeaderboardRoot,
		roots.ScenarioRunnerRoot,
	}
	if existing != "" {
		entries = append(entries, existing)
	}
	return strings.Join(entries, string(os.PathListSeparator))
}

// Build creates the snapshot for roots. existingPythonPath is the caller's
// current PYTHONPATH, appended after the fixed entries.
func Build(roots Roots, existingPythonPath string) Snapshot {
	s := Snapshot{values: make(map[string]string, 5)}
	s.set(CarlaRootVar, roots.CarlaRoot)
	s.set(ScenarioRunnerRootVar, roots.ScenarioRunnerRoot)
	s.set(LeaderboardRootVar, roots.LeaderboardRoot)
	s.set(SavePathVar, roots.SavePath)
	s.set(PythonPathVar, SearchPath(roots, existingPythonPath))
	return s
}

// FromProcess is Build with the current process's PYTHONPATH.
func FromProcess(roots Roots) Snapshot {
	return Build(roots, os.Getenv(PythonPathVar))
}

func (s *Snapshot) set(name, value string) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value
}

// Get returns the value of name and whether the snapshot defines it.
func (s Snapshot) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Names returns the exported variable names in export order.
func (s Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

// Map returns a copy of the snapshot's variables.
func (s Snapshot) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Pairs returns NAME=value entries in export order.
func (s Snapshot) Pairs() []string {
	pairs := make([]string, 0, len(s.names))
	for _, name := range s.names {
		pairs = append(pairs, name+"="+s.values[name])
	}
	return pairs
}

// Merge overlays the snapshot onto base (KEY=value entries, usually
// os.Environ()). Entries of base that the snapshot defines are replaced; the
// rest keep their order.
func (s Snapshot) Merge(base []string) []string {
	merged := make([]string, 0, len(base)+len(s.names))
	for _, kv := range base {
		name := kv
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			name = kv[:idx]
		}
		if _, ok := s.values[name]; ok {
			continue
		}
		merged = append(merged, kv)
	}
	return append(merged, s.Pairs()...)
}
