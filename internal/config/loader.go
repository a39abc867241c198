package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name under $HOME.
	ConfigDir = ".aura"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file. AURA_CONFIG
// overrides the default location.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("AURA_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults. A missing file is not an
// error; defaults plus env apply.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	LoadEnvFileCandidates()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	envconfig.Process("AURA_PATHS", &cfg.Paths)
	envconfig.Process("AURA_MODEL", &cfg.Model)
	envconfig.Process("AURA_OLLAMA", &cfg.Ollama)
	envconfig.Process("AURA_TOOLS", &cfg.Tools)
	envconfig.Process("AURA_TOOLS_SUBAGENTS", &cfg.Tools.Subagents)
	envconfig.Process("AURA_AGENTS", &cfg.Agents)
	envconfig.Process("AURA_GUARDIAN", &cfg.Guardian)
	envconfig.Process("AURA_CONFIRM", &cfg.Confirm)
	envconfig.Process("AURA_TRACE", &cfg.Trace)
	envconfig.Process("AURA_SLACK", &cfg.Slack)

	return cfg, nil
}

// Save writes the configuration to the config file, creating the
// directory if needed.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
