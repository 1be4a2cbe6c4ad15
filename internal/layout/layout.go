// Package layout computes where a single evaluation run reads its inputs
// from and writes its outputs to.
//
// Outputs are grouped per agent, benchmark and traffic-manager seed:
//
//	<out_root>/<agent>/<benchmark>/<seed>/res/<route_id>_res.json
//	<out_root>/<agent>/<benchmark>/<seed>/out/<route_id>_out.log
//	<out_root>/<agent>/<benchmark>/<seed>/err/<route_id>_err.log
//	<out_root>/<agent>/<benchmark>/<seed>/viz/<route_id>/
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	config "leaderboard-launcher/internal/config"
)

// Set is the immutable path set of one run. All paths are absolute.
type Set struct {
	RouteID string
	BaseDir string

	RouteFile   string
	ResultFile  string
	LogFile     string
	ErrorFile   string
	VizDir      string
	AgentFile   string
	AgentConfig string
}

// RouteID derives the zero-padded route identifier from a route file name:
// the last "_"-separated token of the stem, padded to 3 digits for
// bench2drive and 2 digits for every other benchmark.
func RouteID(routeFile, benchmark string) string {
	stem := strings.TrimSuffix(filepath.Base(routeFile), filepath.Ext(routeFile))
	suffix := stem
	if idx := strings.LastIndex(stem, "_"); idx >= 0 {
		suffix = stem[idx+1:]
	}

	width := 2
	if strings.EqualFold(strings.TrimSpace(benchmark), "bench2drive") {
		width = 3
	}
	if len(suffix) < width {
		suffix = strings.Repeat("0", width-len(suffix)) + suffix
	}
	return suffix
}

// Resolve interpolates the path set for cfg. RepoRoot must already be
// absolute; relative route, agent and output paths are taken relative to it.
func Resolve(cfg *config.Config) (Set, error) {
	if cfg == nil {
		return Set{}, errors.New("layout: nil config")
	}
	if !filepath.IsAbs(cfg.RepoRoot) {
		return Set{}, fmt.Errorf("layout: repo root %q is not absolute", cfg.RepoRoot)
	}
	if strings.TrimSpace(cfg.RouteFile) == "" {
		return Set{}, errors.New("route file is required")
	}
	if strings.TrimSpace(cfg.AgentName) == "" {
		return Set{}, errors.New("agent name is required")
	}
	if strings.TrimSpace(cfg.Benchmark) == "" {
		return Set{}, errors.New("benchmark is required")
	}

	var set Set
	var err error
	if set.RouteFile, err = config.ExpandPath(cfg.RouteFile, cfg.RepoRoot); err != nil {
		return Set{}, fmt.Errorf("route file: %w", err)
	}
	if set.AgentFile, err = config.ExpandPath(cfg.AgentFile, cfg.RepoRoot); err != nil {
		return Set{}, fmt.Errorf("agent file: %w", err)
	}
	if set.AgentConfig, err = config.ExpandPath(cfg.AgentConfig, cfg.RepoRoot); err != nil {
		return Set{}, fmt.Errorf("agent config: %w", err)
	}
	outRoot, err := config.ExpandPath(cfg.OutRoot, cfg.RepoRoot)
	if err != nil {
		return Set{}, fmt.Errorf("output root: %w", err)
	}
	if outRoot == "" {
		return Set{}, errors.New("output root is required")
	}

	set.RouteID = RouteID(set.RouteFile, cfg.Benchmark)
	set.BaseDir = filepath.Join(outRoot, cfg.AgentName, cfg.Benchmark, strconv.Itoa(cfg.Seed))
	set.ResultFile = filepath.Join(set.BaseDir, "res", set.RouteID+"_res.json")
	set.LogFile = filepath.Join(set.BaseDir, "out", set.RouteID+"_out.log")
	set.ErrorFile = filepath.Join(set.BaseDir, "err", set.RouteID+"_err.log")
	set.VizDir = filepath.Join(set.BaseDir, "viz", set.RouteID)
	return set, nil
}

// OutputDirs lists every directory that must exist before launch, parents
// first, without duplicates.
func (s Set) OutputDirs() []string {
	candidates := []string{
		filepath.Dir(s.ResultFile),
		filepath.Dir(s.LogFile),
		filepath.Dir(s.ErrorFile),
		s.VizDir,
	}
	seen := make(map[string]struct{}, len(candidates))
	dirs := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

// EnsureDirs creates every directory in dirs (and its parents). Existing
// directories are not an error.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := mkdirAllFn(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

var mkdirAllFn = os.MkdirAll

// Input is a required input path checked before launch.
type Input struct {
	Name  string
	Path  string
	IsDir bool
}

// CheckInputs verifies that each input exists with the expected kind.
// All problems are reported together.
func CheckInputs(inputs ...Input) error {
	var errs []error
	for _, in := range inputs {
		if strings.TrimSpace(in.Path) == "" {
			errs = append(errs, fmt.Errorf("%s is not set", in.Name))
			continue
		}
		info, err := os.Stat(in.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s does not exist: %s", in.Name, in.Path))
			continue
		}
		if in.IsDir && !info.IsDir() {
			errs = append(errs, fmt.Errorf("%s is not a directory: %s", in.Name, in.Path))
		}
	}
	return errors.Join(errs...)
}
