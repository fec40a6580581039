package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"exiled-search/pkg/logger"
)

// initializeConfig creates or loads the configuration.
func initializeConfig(providedPath string, defaultPath string, log *logger.Logger) (*Config, error) {
	// Try provided path first if specified
	if providedPath != "" {
		config, err := loadConfigFromPath(providedPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from provided path: %w", err)
		}
		return config, nil
	}

	// Try default path, create if doesn't exist
	if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
		config := DefaultConfig(log)
		if err := config.WriteFile(defaultPath); err != nil {
			return nil, err
		}
		config.path = defaultPath
		log.Info("Wrote default configuration", "path", defaultPath)
		return config, nil
	}

	config, err := loadConfigFromPath(defaultPath, log)
	if err != nil {
		log.Warn("Falling back to default configuration", "path", defaultPath, "error", err)
		return DefaultConfig(log), nil
	}
	return config, nil
}

// FindConfig locates and initializes the configuration: the provided path,
// else config.json (or config.yaml) in the user config directory, created
// with defaults on first run. Environment variables and .env files override
// the result.
func FindConfig(providedPath string, log *logger.Logger) (*Config, error) {
	log.Info("Looking for configuration", "provided_path", providedPath)

	// Get user config directory
	homeConfigDir, err := os.UserConfigDir()
	if err != nil {
		log.Error("Failed to get user config directory", err)
		return nil, err
	}

	defaultConfigDir := filepath.Join(homeConfigDir, "exiled-search")
	defaultConfigPath := filepath.Join(defaultConfigDir, "config.json")
	if yamlPath := filepath.Join(defaultConfigDir, "config.yaml"); fileExists(yamlPath) {
		defaultConfigPath = yamlPath
	}

	log.Debug("Configuration paths",
		"config_dir", defaultConfigDir,
		"config_path", defaultConfigPath)

	log.Debug("Ensuring directory exists", "path", defaultConfigDir)
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		log.Error("Failed to create directory", err, "path", defaultConfigDir)
		return nil, err
	}

	config, err := initializeConfig(providedPath, defaultConfigPath, log)
	if err != nil {
		return nil, err
	}

	config.loadDotEnv(".env", filepath.Join(defaultConfigDir, ".env"))
	config.applyEnv()

	if config.dbPath == "" {
		config.dbPath = filepath.Join(defaultConfigDir, "exiled-search.db")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would only fail much later.
func (c *Config) Validate() error {
	u, err := url.Parse(c.tradeURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid trade_url %q", c.tradeURL)
	}
	if c.scalePercent <= 0 {
		return fmt.Errorf("scale_percent must be positive, got %d", c.scalePercent)
	}
	if len(c.copyHotkey) == 0 {
		return fmt.Errorf("copy_hotkey must name at least one key")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
