package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"
	EnvFileEnvVar     = "KAIRO_ENV"
	DataDirEnvVar     = "KAIRO_DATA_DIR"

	DefaultModel            = "openai/gpt-4o-mini"
	DefaultBaseURL          = "https://openrouter.ai/api/v1"
	DefaultHotkey           = "Ctrl+Alt+L"
	DefaultScreenshotHotkey = "Ctrl+Alt+S"
	DefaultLanguage         = "English"
)

type LoadOptions struct {
	APIKeyPathOverride string
	DataDirOverride    string
}

type Config struct {
	APIKey            string
	APIKeyPath        string
	Model             string
	BaseURL           string
	Providers         []string
	Hotkey            string
	ScreenshotHotkey  string
	SettleDelay       time.Duration
	DismissGrace      time.Duration
	RequestTimeout    time.Duration
	EnableFileLogging bool
	LogLevel          string
	TargetLanguage    string
	DataDir           string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use KAIRO_ENV env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	var providers []string
	if providersStr := os.Getenv("PROVIDERS"); providersStr != "" {
		for _, provider := range strings.Split(providersStr, ",") {
			if trimmed := strings.TrimSpace(provider); trimmed != "" {
				providers = append(providers, trimmed)
			}
		}
	}

	dataDir, err := resolveDataDir(opts)
	if err != nil {
		return nil, err
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             getEnvWithDefault("MODEL", DefaultModel),
		BaseURL:           strings.TrimRight(getEnvWithDefault("API_BASE_URL", DefaultBaseURL), "/"),
		Providers:         providers,
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		ScreenshotHotkey:  getEnvWithDefault("SCREENSHOT_HOTKEY", DefaultScreenshotHotkey),
		SettleDelay:       positiveDuration("SETTLE_DELAY_MS", 150, time.Millisecond),
		DismissGrace:      positiveDuration("DISMISS_GRACE_MS", 400, time.Millisecond),
		RequestTimeout:    positiveDuration("REQUEST_TIMEOUT_SEC", 45, time.Second),
		EnableFileLogging: strings.ToLower(getEnvWithDefault("ENABLE_FILE_LOGGING", "true")) == "true",
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		TargetLanguage:    getEnvWithDefault("TARGET_LANGUAGE", DefaultLanguage),
		DataDir:           dataDir,
	}

	return cfg, nil
}

// Configured reports whether completions can be requested.
func (c *Config) Configured() bool { return strings.TrimSpace(c.APIKey) != "" }

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("OPENROUTER_API_KEY")
}

// resolveDataDir picks where the store and logs live. The directory is not
// created here.
func resolveDataDir(opts LoadOptions) (string, error) {
	if dir := strings.TrimSpace(opts.DataDirOverride); dir != "" {
		return dir, nil
	}
	if dir := strings.TrimSpace(os.Getenv(DataDirEnvVar)); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "kairo"), nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// positiveDuration reads key as a count of unit. Unset, invalid or
// non-positive values give def.
func positiveDuration(key string, def int, unit time.Duration) time.Duration {
	n := def
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	return time.Duration(n) * unit
}
