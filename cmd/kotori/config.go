package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kotori-ai/kotori/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify kotori configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/kotori/config.yaml
Project-specific overrides can be placed in .kotori.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", orUnset(cfg.Anthropic.Model))
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", orUnset(cfg.Anthropic.AWSRegion))
	fmt.Printf("routing.keyword_weight: %g\n", cfg.Routing.KeywordWeight)
	fmt.Printf("routing.semantic_weight: %g\n", cfg.Routing.SemanticWeight)
	fmt.Printf("routing.default_confidence: %g\n", cfg.Routing.DefaultConfidence)
	fmt.Printf("executor.retry_budget: %d\n", cfg.Executor.RetryBudget)
	fmt.Printf("executor.min_response_length: %d\n", cfg.Executor.MinResponseLength)
	fmt.Printf("executor.fallback_chain: %s\n", strings.Join(cfg.Executor.FallbackChain, ","))
	fmt.Printf("parallel.max_responders: %d\n", cfg.Parallel.MaxResponders)
	fmt.Printf("parallel.timeout: %s\n", cfg.Parallel.Timeout)
	fmt.Printf("catalog.path: %s\n", orUnset(cfg.Catalog.Path))
	fmt.Printf("catalog.watch: %t\n", cfg.Catalog.Watch)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return orUnset(cfg.Anthropic.Model), nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "anthropic.aws_region":
		return orUnset(cfg.Anthropic.AWSRegion), nil
	case "routing.keyword_weight":
		return strconv.FormatFloat(cfg.Routing.KeywordWeight, 'g', -1, 64), nil
	case "routing.semantic_weight":
		return strconv.FormatFloat(cfg.Routing.SemanticWeight, 'g', -1, 64), nil
	case "routing.default_confidence":
		return strconv.FormatFloat(cfg.Routing.DefaultConfidence, 'g', -1, 64), nil
	case "executor.retry_budget":
		return strconv.Itoa(cfg.Executor.RetryBudget), nil
	case "executor.min_response_length":
		return strconv.Itoa(cfg.Executor.MinResponseLength), nil
	case "executor.fallback_chain":
		return strings.Join(cfg.Executor.FallbackChain, ","), nil
	case "parallel.max_responders":
		return strconv.Itoa(cfg.Parallel.MaxResponders), nil
	case "parallel.timeout":
		return cfg.Parallel.Timeout.String(), nil
	case "catalog.path":
		return orUnset(cfg.Catalog.Path), nil
	case "catalog.watch":
		return strconv.FormatBool(cfg.Catalog.Watch), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue assigns a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "executor.retry_budget":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid retry budget %q", value)
		}
		cfg.Executor.RetryBudget = n
	case "executor.fallback_chain":
		cfg.Executor.FallbackChain = strings.Split(value, ",")
	case "catalog.path":
		cfg.Catalog.Path = value
	case "catalog.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		cfg.Catalog.Watch = b
	default:
		return fmt.Errorf("unknown or read-only configuration key: %s", key)
	}
	return nil
}

// orUnset substitutes a placeholder for empty display values.
func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
