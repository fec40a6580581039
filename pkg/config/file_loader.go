package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"exiled-search/pkg/logger"
)

// fileConfig is the on-disk shape of Config.
type fileConfig struct {
	TradeURL      string            `json:"trade_url" yaml:"trade_url"`
	BrowserURL    string            `json:"browser_url" yaml:"browser_url"`
	Headless      bool              `json:"headless" yaml:"headless"`
	DelayProfile  string            `json:"delay_profile" yaml:"delay_profile"`
	ScalePercent  int               `json:"scale_percent" yaml:"scale_percent"`
	LogLevel      string            `json:"log_level" yaml:"log_level"`
	NotifyCommand string            `json:"notify_command" yaml:"notify_command"`
	WindowClasses []string          `json:"window_classes" yaml:"window_classes"`
	WindowTitles  []string          `json:"window_titles" yaml:"window_titles"`
	CopyHotkey    []string          `json:"copy_hotkey" yaml:"copy_hotkey"`
	SocketPath    string            `json:"socket_path" yaml:"socket_path"`
	DBPath        string            `json:"db_path" yaml:"db_path"`
	Sound         *bool             `json:"sound" yaml:"sound"`
	Selectors     map[string]string `json:"selectors,omitempty" yaml:"selectors,omitempty"`
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFromFile loads the configuration from a JSON or YAML file. Keys
// missing from the file keep their current values.
func (c *Config) LoadFromFile(path string, log *logger.Logger) error {
	log.Debug("Loading configuration from file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read config file", err, "path", path)
		return err
	}
	log.Debug("Config file read successfully", "size_bytes", len(data))

	// Use a temporary struct to unmarshal
	var temp fileConfig
	if isYAML(path) {
		err = yaml.Unmarshal(data, &temp)
	} else {
		err = json.Unmarshal(data, &temp)
	}
	if err != nil {
		log.Error("Failed to parse config file", err, "path", path)
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	log.Debug("Config file parsed successfully")

	c.apply(temp)
	c.path = path
	return nil
}

// apply assigns every set field of f to the private fields.
func (c *Config) apply(f fileConfig) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&c.tradeURL, f.TradeURL)
	setString(&c.browserURL, f.BrowserURL)
	setString(&c.delayProfile, f.DelayProfile)
	setString(&c.logLevel, f.LogLevel)
	setString(&c.notifyCommand, f.NotifyCommand)
	setString(&c.socketPath, f.SocketPath)
	setString(&c.dbPath, f.DBPath)

	c.headless = c.headless || f.Headless
	if f.ScalePercent != 0 {
		c.scalePercent = f.ScalePercent
	}
	if len(f.WindowClasses) > 0 {
		c.windowClasses = f.WindowClasses
	}
	if len(f.WindowTitles) > 0 {
		c.windowTitles = f.WindowTitles
	}
	if len(f.CopyHotkey) > 0 {
		c.copyHotkey = f.CopyHotkey
	}
	if f.Sound != nil {
		c.sound = *f.Sound
	}
	if len(f.Selectors) > 0 {
		c.selectors = f.Selectors
	}
}

func (c *Config) toFile() fileConfig {
	sound := c.sound
	return fileConfig{
		TradeURL:      c.tradeURL,
		BrowserURL:    c.browserURL,
		Headless:      c.headless,
		DelayProfile:  c.delayProfile,
		ScalePercent:  c.scalePercent,
		LogLevel:      c.logLevel,
		NotifyCommand: c.notifyCommand,
		WindowClasses: c.windowClasses,
		WindowTitles:  c.windowTitles,
		CopyHotkey:    c.copyHotkey,
		SocketPath:    c.socketPath,
		DBPath:        c.dbPath,
		Sound:         &sound,
		Selectors:     c.selectors,
	}
}

// WriteFile saves the configuration, as YAML or JSON depending on the extension.
func (c *Config) WriteFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c.toFile())
	} else {
		data, err = json.MarshalIndent(c.toFile(), "", "    ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// loadConfigFromPath loads defaults overlaid with the file at path.
func loadConfigFromPath(path string, log *logger.Logger) (*Config, error) {
	config := DefaultConfig(log)
	if err := config.LoadFromFile(path, log); err != nil {
		return nil, err
	}
	return config, nil
}
