package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	ilogger "leaderboard-launcher/internal/logger"

	"github.com/goccy/go-json"
)

// Preset bundles the per-agent inputs of an evaluation so that a run can be
// started with just --preset and --route.
type Preset struct {
	AgentName   string `json:"agent_name,omitempty"`
	Benchmark   string `json:"benchmark,omitempty"`
	AgentFile   string `json:"agent_file"`
	AgentConfig string `json:"agent_config"`
	Evaluator   string `json:"evaluator,omitempty"`
	Description string `json:"description,omitempty"`
}

type PresetsConfig struct {
	DefaultPreset string            `json:"default_preset"`
	Presets       map[string]Preset `json:"presets"`
}

const DefaultPresetName = "simlingo"

var defaultPresetsConfig = PresetsConfig{
	DefaultPreset: DefaultPresetName,
	Presets: map[string]Preset{
		"simlingo": {
			AgentName:   "simlingo",
			Benchmark:   "bench2drive",
			AgentFile:   "team_code/agent_simlingo.py",
			AgentConfig: "ckpts/simlingo/simlingo/checkpoints/epoch=013.ckpt/pytorch_model.pt",
			Evaluator:   "bench2drive",
			Description: "SimLingo on the Bench2Drive split",
		},
	},
}

var (
	presetsConfigOnce   sync.Once
	presetsConfigCached *PresetsConfig
)

func presetsConfig() *PresetsConfig {
	presetsConfigOnce.Do(func() {
		presetsConfigCached = loadPresetsConfig()
	})
	if presetsConfigCached == nil {
		return &defaultPresetsConfig
	}
	return presetsConfigCached
}

func loadPresetsConfig() *PresetsConfig {
	configDir, err := HomeConfigDir()
	if err != nil {
		ilogger.LogWarn(fmt.Sprintf("Failed to resolve home directory for presets: %v; using defaults", err))
		return &defaultPresetsConfig
	}

	configPath := filepath.Clean(filepath.Join(configDir, "presets.json"))
	data, err := os.ReadFile(configPath) // #nosec G304 -- path is fixed under user home
	if err != nil {
		if !os.IsNotExist(err) {
			ilogger.LogWarn(fmt.Sprintf("Failed to read presets %s: %v; using defaults", configPath, err))
		}
		return &defaultPresetsConfig
	}

	var cfg PresetsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		ilogger.LogWarn(fmt.Sprintf("Failed to parse presets %s: %v; using defaults", configPath, err))
		return &defaultPresetsConfig
	}

	cfg.DefaultPreset = strings.TrimSpace(cfg.DefaultPreset)
	if cfg.DefaultPreset == "" {
		cfg.DefaultPreset = defaultPresetsConfig.DefaultPreset
	}

	for name, preset := range defaultPresetsConfig.Presets {
		if _, exists := cfg.Presets[name]; !exists {
			if cfg.Presets == nil {
				cfg.Presets = make(map[string]Preset)
			}
			cfg.Presets[name] = preset
		}
	}

	for name := range cfg.Presets {
		if err := ValidatePresetName(name); err != nil {
			ilogger.LogWarn(fmt.Sprintf("Ignoring preset in %s: %v", configPath, err))
			delete(cfg.Presets, name)
		}
	}

	return &cfg
}

// ResolvePreset looks up name, falling back to the configured default preset
// when name is empty. Unknown names are an error.
func ResolvePreset(name string) (string, Preset, error) {
	cfg := presetsConfig()
	name = strings.TrimSpace(name)
	if name == "" {
		name = cfg.DefaultPreset
	}
	if err := ValidatePresetName(name); err != nil {
		return "", Preset{}, err
	}
	preset, ok := cfg.Presets[name]
	if !ok {
		return "", Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	if strings.TrimSpace(preset.AgentName) == "" {
		preset.AgentName = name
	}
	return name, preset, nil
}

// PresetNames returns the sorted names of all known presets.
func PresetNames() []string {
	cfg := presetsConfig()
	names := make([]string, 0, len(cfg.Presets))
	for name := range cfg.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ResetPresetsCacheForTest() {
	presetsConfigCached = nil
	presetsConfigOnce = sync.Once{}
}
