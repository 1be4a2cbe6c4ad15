package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended (with "_") to every flag name when looked up in the
// environment, e.g. --tm-port -> LEADERBOARD_LAUNCHER_TM_PORT.
const EnvPrefix = "LEADERBOARD_LAUNCHER"

// NewViper returns a viper instance configured for LEADERBOARD_LAUNCHER_*
// environment variables and an optional config file.
//
// Search order when configFile is empty:
//   - $HOME/.leaderboard-launcher/config.(yaml|yml|json|toml|...)
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	dir, err := HomeConfigDir()
	if err != nil {
		return v, nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, err
	}

	return v, nil
}

// HomeConfigDir returns ~/.leaderboard-launcher.
func HomeConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(home) == "" {
		return "", errors.New("home directory is empty")
	}
	return filepath.Clean(filepath.Join(home, ".leaderboard-launcher")), nil
}
