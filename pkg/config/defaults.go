package config

import (
	"path/filepath"

	"exiled-search/pkg/logger"
)

const (
	DefaultTradeURL     = "https://www.pathofexile.com/trade2/search/poe2/Standard"
	DefaultDelayProfile = "normal"
	DefaultScalePercent = 100
	DefaultLogLevel     = "info"
)

// DefaultConfig creates a default configuration.
func DefaultConfig(log *logger.Logger) *Config {
	log.Debug("Creating default configuration")

	config := &Config{
		tradeURL:      DefaultTradeURL,
		delayProfile:  DefaultDelayProfile,
		scalePercent:  DefaultScalePercent,
		logLevel:      DefaultLogLevel,
		windowClasses: []string{"steam_app_2694490"},
		windowTitles:  []string{"Path of Exile 2"},
		copyHotkey:    []string{"ctrl", "alt", "c"},
		socketPath:    filepath.Join("/tmp", "exiled-search.sock"),
		sound:         true,
		log:           log,
	}

	log.Debug("Created default configuration",
		"trade_url", config.tradeURL,
		"delay_profile", config.delayProfile,
		"window_class_count", len(config.windowClasses))

	return config
}
