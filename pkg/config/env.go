package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvTradeURL     = "EXILED_SEARCH_TRADE_URL"
	EnvBrowserURL   = "EXILED_SEARCH_BROWSER_URL"
	EnvDelayProfile = "EXILED_SEARCH_DELAY_PROFILE"
	EnvScale        = "EXILED_SEARCH_SCALE"
	EnvLogLevel     = "EXILED_SEARCH_LOG_LEVEL"
)

// loadDotEnv reads .env files into the process environment without
// overriding variables that are already set.
func (c *Config) loadDotEnv(paths ...string) {
	for _, p := range paths {
		err := godotenv.Load(p)
		switch {
		case err == nil:
			c.log.Debug("Loaded environment file", "path", p)
		case errors.Is(err, fs.ErrNotExist):
		default:
			c.log.Warn("Failed to load environment file", "path", p, "error", err)
		}
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvTradeURL)); v != "" {
		c.tradeURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBrowserURL)); v != "" {
		c.browserURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDelayProfile)); v != "" {
		c.delayProfile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.logLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvScale)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.log.Warn("Ignoring non-numeric scale override", "env", EnvScale, "value", v)
			return
		}
		c.scalePercent = n
	}
}
