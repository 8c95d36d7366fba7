// Package config handles configuration loading and management for
// crossroads. It supports XDG config paths, project-level overrides, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

// Config holds all configuration for crossroads.
type Config struct {
	Anthropic    AnthropicConfig          `mapstructure:"anthropic"`
	Orchestrator models.OrchestratorConfig `mapstructure:"orchestrator"`
	History      HistoryConfig            `mapstructure:"history"`
	Skills       SkillsConfig             `mapstructure:"skills"`
}

// AnthropicConfig holds Anthropic API settings, read by GetAPIKey and
// GetAPIKeySource in keys.go. The agent launcher does not read it.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// HistoryConfig controls where completed orchestration runs are recorded.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// SkillsConfig controls where user-defined skill overrides are loaded from.
type SkillsConfig struct {
	UserDir string `mapstructure:"user_dir"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
//  1. Environment variables (ANTHROPIC_API_KEY)
//  2. Project config (.crossroads.yaml in current directory or parent)
//  3. User config (~/.config/crossroads/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file, bypassing XDG and
// project discovery. Used in tests.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes cfg to the user config file, creating its directory if
// needed.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("orchestrator.max_parallel_agents", cfg.Orchestrator.MaxParallelAgents)
	v.Set("orchestrator.auto_merge", cfg.Orchestrator.AutoMerge)
	v.Set("orchestrator.conflict_strategy", string(cfg.Orchestrator.ConflictStrategy))
	v.Set("history.path", cfg.History.Path)
	v.Set("skills.user_dir", cfg.Skills.UserDir)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file, if one
// exists in the current directory or an ancestor.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	defaults := models.DefaultOrchestratorConfig()

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("orchestrator.max_parallel_agents", defaults.MaxParallelAgents)
	v.SetDefault("orchestrator.auto_merge", defaults.AutoMerge)
	v.SetDefault("orchestrator.conflict_strategy", string(defaults.ConflictStrategy))
	v.SetDefault("history.path", defaultHistoryPath())
	v.SetDefault("skills.user_dir", defaultSkillsDir())
}

// getUserConfigDir returns the XDG config directory for crossroads.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "crossroads")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "crossroads")
	}
	return filepath.Join(home, ".config", "crossroads")
}

func defaultHistoryPath() string {
	return filepath.Join(getUserConfigDir(), "history.json")
}

func defaultSkillsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(getUserConfigDir(), "skills")
	}
	return filepath.Join(home, ".xroads", "skills")
}

// findProjectConfig searches for .crossroads.yaml in the current directory
// and its ancestors.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".crossroads.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config populated with built-in defaults, without
// touching disk.
func Default() *Config {
	return &Config{
		Anthropic:    AnthropicConfig{APIKey: ""},
		Orchestrator: models.DefaultOrchestratorConfig(),
		History:      HistoryConfig{Path: defaultHistoryPath()},
		Skills:       SkillsConfig{UserDir: defaultSkillsDir()},
	}
}
