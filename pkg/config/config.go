package config

import (
	"exiled-search/pkg/logger"
)

// Config holds the application configuration.
type Config struct {
	// Configurable via file or environment (private fields to enforce immutability)
	tradeURL      string
	browserURL    string
	headless      bool
	delayProfile  string
	scalePercent  int
	logLevel      string
	notifyCommand string
	windowClasses []string
	windowTitles  []string
	copyHotkey    []string
	socketPath    string
	dbPath        string
	sound         bool
	selectors     map[string]string

	// Internal fields
	log  *logger.Logger
	path string
}

// New creates a new Config instance with the provided logger.
func New(log *logger.Logger) *Config {
	return &Config{
		log: log,
	}
}

// GetTradeURL returns the trade search page to open.
func (c *Config) GetTradeURL() string {
	return c.tradeURL
}

// GetBrowserURL returns the DevTools websocket of an already running
// browser, or "" to launch one.
func (c *Config) GetBrowserURL() string {
	return c.browserURL
}

func (c *Config) GetHeadless() bool {
	return c.headless
}

func (c *Config) GetDelayProfile() string {
	return c.delayProfile
}

func (c *Config) GetScalePercent() int {
	return c.scalePercent
}

func (c *Config) GetLogLevel() string {
	return c.logLevel
}

// GetNotifyCommand returns the notify command.
func (c *Config) GetNotifyCommand() string {
	return c.notifyCommand
}

// GetWindowClasses returns a copy of the game window classes.
func (c *Config) GetWindowClasses() []string {
	return append([]string{}, c.windowClasses...)
}

func (c *Config) GetWindowTitles() []string {
	return append([]string{}, c.windowTitles...)
}

// GetCopyHotkey returns the in-game copy shortcut, modifiers first.
func (c *Config) GetCopyHotkey() []string {
	return append([]string{}, c.copyHotkey...)
}

func (c *Config) GetSocketPath() string {
	return c.socketPath
}

func (c *Config) GetDBPath() string {
	return c.dbPath
}

func (c *Config) GetSound() bool {
	return c.sound
}

// GetSelectors returns a copy of the selector overrides.
func (c *Config) GetSelectors() map[string]string {
	selectorsCopy := make(map[string]string, len(c.selectors))
	for k, v := range c.selectors {
		selectorsCopy[k] = v
	}
	return selectorsCopy
}

// Path is the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}
