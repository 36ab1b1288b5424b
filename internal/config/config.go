package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mmcdole/kinocache/internal/domain"
)

const appName = "kinocache"

// Config holds all application configuration
type Config struct {
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CacheConfig holds disk cache configuration
type CacheConfig struct {
	RuntimeDir string `mapstructure:"runtime_dir"` // Directory holding the cache files
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
// RuntimeDir is empty if neither $XDG_DATA_HOME nor $HOME is set.
func DefaultConfig() *Config {
	dataDir := defaultDataPath()
	logFile := ""
	if dataDir != "" {
		logFile = filepath.Join(dataDir, appName+".log")
	}
	return &Config{
		Cache: CacheConfig{
			RuntimeDir: dataDir,
		},
		Logging: LoggingConfig{
			File:  logFile,
			Level: "INFO",
		},
	}
}

// defaultDataPath returns $XDG_DATA_HOME/kinocache, falling back to ~/.local/share/kinocache
func defaultDataPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", appName)
	}
	return ""
}

// defaultConfigPath returns $XDG_CONFIG_HOME/kinocache, falling back to ~/.config/kinocache
func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", appName)
	}
	return ""
}

// LoadConfig loads configuration from file and environment.
// If no runtime directory can be derived, the loaded config is still returned
// along with domain.ErrNoRuntimeDir so a caller-supplied directory can fill the gap.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	if dir := defaultConfigPath(); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	return load(v, false)
}

// LoadConfigFile loads configuration from an explicit file path, which must exist.
// It reports a missing runtime directory the same way LoadConfig does.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, true)
}

func load(v *viper.Viper, explicit bool) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigType("yaml")

	// Environment variable overrides, e.g. KINOCACHE_CACHE_RUNTIME_DIR
	v.SetEnvPrefix("KINOCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about
	v.SetDefault("cache.runtime_dir", cfg.Cache.RuntimeDir)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	var err error
	if cfg.Cache.RuntimeDir, err = expandHome(cfg.Cache.RuntimeDir); err != nil {
		return nil, err
	}
	if cfg.Logging.File, err = expandHome(cfg.Logging.File); err != nil {
		return nil, err
	}

	if cfg.Cache.RuntimeDir == "" {
		return cfg, domain.ErrNoRuntimeDir
	}
	return cfg, nil
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
