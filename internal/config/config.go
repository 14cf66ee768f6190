// Package config loads the server configuration from config.yaml,
// environment variables and defaults, in that order of increasing
// precedence for env over file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "GANTRY"

	keyDataDir          = "data_dir"
	keyRequestTimeout   = "request_timeout"
	keyRetryAttempts    = "retry_attempts"
	keyRetryBaseDelay   = "retry_base_delay"
	keyRetryMaxDelay    = "retry_max_delay"
	keyDependencyPolicy = "dependency_policy"
)

// defaultConfigYAML is written to config.yaml on first run so operators
// have a commented template to edit.
const defaultConfigYAML = `# Gantry server configuration.
# Environment variables with the GANTRY_ prefix override these values,
# e.g. GANTRY_DATA_DIR or GANTRY_RETRY_ATTEMPTS.

# Directory holding the gantry.db database (defaults next to this file).
# data_dir:

# Per-request store timeout.
request_timeout: 10s

# Retry policy for transient store failures.
retry_attempts: 3
retry_base_delay: 100ms
retry_max_delay: 2s

# Dependency edge policy: same_level (default) or any_level.
dependency_policy: same_level
`

// Config carries the resolved server settings.
type Config struct {
	DataDir          string
	RequestTimeout   time.Duration
	RetryAttempts    int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	DependencyPolicy string
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. A missing config.yaml is not an error;
// defaults and GANTRY_* environment variables still apply.
func Load(configDir string) (Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(keyDataDir, configDir)
	v.SetDefault(keyRequestTimeout, "10s")
	v.SetDefault(keyRetryAttempts, 3)
	v.SetDefault(keyRetryBaseDelay, "100ms")
	v.SetDefault(keyRetryMaxDelay, "2s")
	v.SetDefault(keyDependencyPolicy, "same_level")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		DataDir:          v.GetString(keyDataDir),
		RequestTimeout:   v.GetDuration(keyRequestTimeout),
		RetryAttempts:    v.GetInt(keyRetryAttempts),
		RetryBaseDelay:   v.GetDuration(keyRetryBaseDelay),
		RetryMaxDelay:    v.GetDuration(keyRetryMaxDelay),
		DependencyPolicy: v.GetString(keyDependencyPolicy),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be positive, got %d", c.RetryAttempts)
	}
	if c.RetryBaseDelay <= 0 || c.RetryMaxDelay <= 0 {
		return fmt.Errorf("retry delays must be positive")
	}
	switch c.DependencyPolicy {
	case "same_level", "any_level":
	default:
		return fmt.Errorf("unknown dependency_policy %q (want same_level or any_level)", c.DependencyPolicy)
	}
	return nil
}

// DefaultDir resolves the default config directory under the user's
// home, falling back to the working directory when home is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gantry"
	}
	return filepath.Join(home, ".gantry")
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
