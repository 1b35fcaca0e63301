package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/TRIBE-INC/tribe-api/analytics"
	"github.com/TRIBE-INC/tribe-api/auth"
	"github.com/TRIBE-INC/tribe-api/telemetry"
)

// Load loads the configuration from file, environment, and defaults.
// A missing config file is not an error: defaults plus environment
// variables form a complete configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tribe"))
		}

		// Check /etc
		v.AddConfigPath("/etc/tribe/")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Environment variables win over file values
	applyEnvOverrides(&cfg)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", analytics.DefaultBaseURL)
	v.SetDefault("api.key", analytics.PlaceholderAPIKey)
	v.SetDefault("api.timeout", 30)

	// Telemetry defaults
	v.SetDefault("telemetry.base_url", telemetry.DefaultBaseURL)
	v.SetDefault("telemetry.enabled", true)

	// Auth defaults
	v.SetDefault("auth.token_url", auth.DefaultTokenURL)
	v.SetDefault("auth.authorize_url", auth.DefaultAuthorizeURL)
	v.SetDefault("auth.client_id", auth.DefaultClientID)
	v.SetDefault("auth.redirect_port", auth.DefaultRedirectPort)

	// Output defaults
	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// applyEnvOverrides applies environment variable overrides.
// Both the prefixed and bare names are accepted, prefixed wins.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("API_KEY"); key != "" {
		cfg.API.Key = key
	}
	if key := os.Getenv("TRIBE_API_KEY"); key != "" {
		cfg.API.Key = key
	}

	if base := os.Getenv("API_BASE"); base != "" {
		cfg.API.BaseURL = base
	}
	if base := os.Getenv("TRIBE_API_BASE"); base != "" {
		cfg.API.BaseURL = base
	}

	if base := os.Getenv("TRIBE_TELEMETRY_BASE"); base != "" {
		cfg.Telemetry.BaseURL = base
	}
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if err := validateURL("api.base_url", cfg.API.BaseURL); err != nil {
		return err
	}

	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive: %d", cfg.API.Timeout)
	}

	if cfg.Telemetry.BaseURL != "" {
		if err := validateURL("telemetry.base_url", cfg.Telemetry.BaseURL); err != nil {
			return err
		}
	}

	if cfg.Auth.TokenURL != "" {
		if err := validateURL("auth.token_url", cfg.Auth.TokenURL); err != nil {
			return err
		}
	}
	if cfg.Auth.AuthorizeURL != "" {
		if err := validateURL("auth.authorize_url", cfg.Auth.AuthorizeURL); err != nil {
			return err
		}
	}
	if cfg.Auth.RedirectPort < 0 || cfg.Auth.RedirectPort > 65535 {
		return fmt.Errorf("invalid auth.redirect_port: %d", cfg.Auth.RedirectPort)
	}

	// Validate output format
	validOutputs := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s", cfg.Output.Format)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// validateURL checks that a configured URL has a scheme and host
func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be a valid URL: %q", name, raw)
	}
	return nil
}
