package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv(APIKeyPathEnvVar, filepath.Join(t.TempDir(), "missing"))
	t.Setenv("OPENROUTER_API_KEY", "test_api_key")
	t.Setenv("MODEL", "test_model")
	t.Setenv("ENABLE_FILE_LOGGING", "false")
	t.Setenv("HOTKEY", "Ctrl+Shift+T")
	t.Setenv("SETTLE_DELAY_MS", "250")
	t.Setenv("API_BASE_URL", "http://localhost:8080/v1/")
	t.Setenv("PROVIDERS", " openai , ,azure")
	t.Setenv(DataDirEnvVar, "/tmp/kairo-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test_api_key", cfg.APIKey)
	assert.True(t, cfg.Configured())
	assert.Equal(t, "test_model", cfg.Model)
	assert.False(t, cfg.EnableFileLogging)
	assert.Equal(t, "Ctrl+Shift+T", cfg.Hotkey)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseURL)
	assert.Equal(t, []string{"openai", "azure"}, cfg.Providers)
	assert.Equal(t, "/tmp/kairo-test", cfg.DataDir)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MODEL", "HOTKEY", "SCREENSHOT_HOTKEY", "SETTLE_DELAY_MS", "DISMISS_GRACE_MS",
		"REQUEST_TIMEOUT_SEC", "ENABLE_FILE_LOGGING", "LOG_LEVEL", "TARGET_LANGUAGE", "API_BASE_URL"} {
		t.Setenv(key, "")
	}
	t.Setenv(DataDirEnvVar, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultHotkey, cfg.Hotkey)
	assert.Equal(t, DefaultScreenshotHotkey, cfg.ScreenshotHotkey)
	assert.Equal(t, 150*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 400*time.Millisecond, cfg.DismissGrace)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.EnableFileLogging)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultLanguage, cfg.TargetLanguage)
}

func TestInvalidDurationsFallBack(t *testing.T) {
	t.Setenv("SETTLE_DELAY_MS", "-5")
	t.Setenv("DISMISS_GRACE_MS", "soon")
	t.Setenv(DataDirEnvVar, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 400*time.Millisecond, cfg.DismissGrace)
}

func TestAPIKeyFileWinsOverEnv(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "openrouter")
	require.NoError(t, os.WriteFile(keyFile, []byte("  file_key\n"), 0o600))

	t.Setenv("OPENROUTER_API_KEY", "env_key")
	t.Setenv(DataDirEnvVar, t.TempDir())

	cfg, err := LoadWithOptions(LoadOptions{APIKeyPathOverride: keyFile})
	require.NoError(t, err)
	assert.Equal(t, "file_key", cfg.APIKey)
	assert.Equal(t, keyFile, cfg.APIKeyPath)
}

func TestAPIKeyPathFromEnv(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(keyFile, []byte("from_env_path"), 0o600))
	t.Setenv(APIKeyPathEnvVar, keyFile)
	t.Setenv(DataDirEnvVar, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from_env_path", cfg.APIKey)
}

func TestDataDirOverride(t *testing.T) {
	t.Setenv(DataDirEnvVar, "/ignored")
	cfg, err := LoadWithOptions(LoadOptions{DataDirOverride: "/override"})
	require.NoError(t, err)
	assert.Equal(t, "/override", cfg.DataDir)
}
