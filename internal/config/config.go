// Package config handles configuration loading and management for kotori.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for kotori.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Executor  ExecutorConfig  `mapstructure:"executor"`
	Parallel  ParallelConfig  `mapstructure:"parallel"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	// Model overrides the default Claude model when non-empty.
	Model string `mapstructure:"model"`
	// UseAWSBedrock routes API calls through AWS Bedrock instead of the
	// Anthropic API.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// RoutingConfig holds routing-strategy weights.
type RoutingConfig struct {
	// KeywordWeight scales the keyword-stage confidence during fusion.
	KeywordWeight float64 `mapstructure:"keyword_weight"`
	// SemanticWeight scales the semantic-stage confidence during fusion.
	SemanticWeight float64 `mapstructure:"semantic_weight"`
	// DefaultConfidence is assigned when no stage produces a candidate.
	DefaultConfidence float64 `mapstructure:"default_confidence"`
	// DomainBoosts multiplies keyword scores per responder id.
	DomainBoosts map[string]float64 `mapstructure:"domain_boosts"`
}

// ExecutorConfig holds dispatch-pipeline budgets.
type ExecutorConfig struct {
	RetryBudget       int      `mapstructure:"retry_budget"`
	MinResponseLength int      `mapstructure:"min_response_length"`
	FallbackChain     []string `mapstructure:"fallback_chain"`
}

// ParallelConfig holds fan-out dispatch settings.
type ParallelConfig struct {
	MaxResponders int           `mapstructure:"max_responders"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// CatalogConfig holds responder-catalog file settings.
type CatalogConfig struct {
	// Path points to a YAML responder catalog. Empty means the built-in
	// catalog.
	Path string `mapstructure:"path"`
	// Watch enables hot reload when the catalog file changes.
	Watch bool `mapstructure:"watch"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.kotori.yaml in current directory or parent)
// 3. User config (~/.config/kotori/config.yaml)
// 4. Built-in defaults
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

	// Project config takes precedence over the user config.
	projectConfig := findProjectConfig()
	if projectConfig != "" {
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
	v.BindEnv("anthropic.use_aws_bedrock", "CLAUDE_CODE_USE_BEDROCK")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
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

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("routing.keyword_weight", cfg.Routing.KeywordWeight)
	v.Set("routing.semantic_weight", cfg.Routing.SemanticWeight)
	v.Set("routing.default_confidence", cfg.Routing.DefaultConfidence)
	v.Set("routing.domain_boosts", cfg.Routing.DomainBoosts)
	v.Set("executor.retry_budget", cfg.Executor.RetryBudget)
	v.Set("executor.min_response_length", cfg.Executor.MinResponseLength)
	v.Set("executor.fallback_chain", cfg.Executor.FallbackChain)
	v.Set("parallel.max_responders", cfg.Parallel.MaxResponders)
	v.Set("parallel.timeout", cfg.Parallel.Timeout.String())
	v.Set("catalog.path", cfg.Catalog.Path)
	v.Set("catalog.watch", cfg.Catalog.Watch)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("routing.keyword_weight", 0.6)
	v.SetDefault("routing.semantic_weight", 0.5)
	v.SetDefault("routing.default_confidence", 0.35)

	v.SetDefault("executor.retry_budget", 2)
	v.SetDefault("executor.min_response_length", 10)
	v.SetDefault("executor.fallback_chain", []string{"general"})

	v.SetDefault("parallel.max_responders", 3)
	v.SetDefault("parallel.timeout", "15s")

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.watch", false)
}

// getUserConfigDir returns the XDG config directory for kotori.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "kotori")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "kotori")
	}
	return filepath.Join(home, ".config", "kotori")
}

// findProjectConfig searches for .kotori.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".kotori.yaml")
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

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Routing: RoutingConfig{
			KeywordWeight:     0.6,
			SemanticWeight:    0.5,
			DefaultConfidence: 0.35,
		},
		Executor: ExecutorConfig{
			RetryBudget:       2,
			MinResponseLength: 10,
			FallbackChain:     []string{"general"},
		},
		Parallel: ParallelConfig{
			MaxResponders: 3,
			Timeout:       15 * time.Second,
		},
	}
}
