package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exiled-search/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{
		"trade_url": "https://www.pathofexile.com/trade2/search/poe2/Dawn",
		"delay_profile": "slow",
		"scale_percent": 85,
		"selectors": {"stat_input": "#stats input"}
	}`)

	c, err := loadConfigFromPath(path, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "https://www.pathofexile.com/trade2/search/poe2/Dawn", c.GetTradeURL())
	assert.Equal(t, "slow", c.GetDelayProfile())
	assert.Equal(t, 85, c.GetScalePercent())
	assert.Equal(t, map[string]string{"stat_input": "#stats input"}, c.GetSelectors())
	// untouched keys keep defaults
	assert.Equal(t, []string{"ctrl", "alt", "c"}, c.GetCopyHotkey())
	assert.True(t, c.GetSound())
	assert.Equal(t, path, c.Path())
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
browser_url: ws://127.0.0.1:9222/devtools/browser/abc
headless: true
sound: false
window_classes:
  - pathofexile2
`)

	c, err := loadConfigFromPath(path, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", c.GetBrowserURL())
	assert.True(t, c.GetHeadless())
	assert.False(t, c.GetSound())
	assert.Equal(t, []string{"pathofexile2"}, c.GetWindowClasses())
	assert.Equal(t, DefaultTradeURL, c.GetTradeURL())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{"trade_url": `)
	_, err := loadConfigFromPath(path, logger.Nop())
	assert.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"config.json", "config.yml"} {
		c := DefaultConfig(logger.Nop())
		c.scalePercent = 90
		c.selectors = map[string]string{"results": ".rows"}
		path := filepath.Join(dir, name)
		require.NoError(t, c.WriteFile(path))

		loaded, err := loadConfigFromPath(path, logger.Nop())
		require.NoError(t, err, name)
		assert.Equal(t, 90, loaded.GetScalePercent(), name)
		assert.Equal(t, ".rows", loaded.GetSelectors()["results"], name)
		assert.Equal(t, c.GetWindowTitles(), loaded.GetWindowTitles(), name)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvTradeURL, "https://example.test/trade")
	t.Setenv(EnvDelayProfile, "fast")
	t.Setenv(EnvScale, "70")
	t.Setenv(EnvLogLevel, "debug")

	c := DefaultConfig(logger.Nop())
	c.applyEnv()

	assert.Equal(t, "https://example.test/trade", c.GetTradeURL())
	assert.Equal(t, "fast", c.GetDelayProfile())
	assert.Equal(t, 70, c.GetScalePercent())
	assert.Equal(t, "debug", c.GetLogLevel())

	t.Setenv(EnvScale, "many")
	c.applyEnv()
	assert.Equal(t, 70, c.GetScalePercent())
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv(EnvBrowserURL, "")
	os.Unsetenv(EnvBrowserURL)
	path := writeFile(t, t.TempDir(), ".env", EnvBrowserURL+"=ws://localhost:9222/devtools/browser/x\n")

	c := DefaultConfig(logger.Nop())
	c.loadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path)
	c.applyEnv()

	assert.Equal(t, "ws://localhost:9222/devtools/browser/x", c.GetBrowserURL())
}

func TestFindConfig_WritesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)

	c, err := FindConfig("", logger.Nop())
	require.NoError(t, err)

	expected := filepath.Join(home, "exiled-search", "config.json")
	assert.FileExists(t, expected)
	assert.Equal(t, expected, c.Path())
	assert.Equal(t, filepath.Join(home, "exiled-search", "exiled-search.db"), c.GetDBPath())

	again, err := FindConfig("", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, c.GetTradeURL(), again.GetTradeURL())
}

func TestValidate(t *testing.T) {
	c := DefaultConfig(logger.Nop())
	require.NoError(t, c.Validate())

	c.tradeURL = "not a url"
	assert.Error(t, c.Validate())

	c = DefaultConfig(logger.Nop())
	c.scalePercent = 0
	assert.ErrorContains(t, c.Validate(), "scale_percent")

	c = DefaultConfig(logger.Nop())
	c.copyHotkey = nil
	assert.Error(t, c.Validate())
}
