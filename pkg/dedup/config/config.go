package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Components   map[string]string `mapstructure:"components"`
}

// ResolutionConfig configures default duplicate resolution behavior.
type ResolutionConfig struct {
	// TargetDir is the default destination for relocated duplicates.
	TargetDir string `mapstructure:"target_dir"`
}

// Config represents the application configuration.
type Config struct {
	Algorithms []string         `mapstructure:"algorithms"`
	ChunkSize  string           `mapstructure:"chunk_size"`
	Workers    int              `mapstructure:"workers"`
	MinSize    string           `mapstructure:"min_size"`
	Ignore     []string         `mapstructure:"ignore"`
	Output     string           `mapstructure:"output"`
	Resolution ResolutionConfig `mapstructure:"resolution"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/dedup/config.yaml
//   - $HOME/.config/dedup/config.yaml
//
// Environment variables are prefixed with DEDUP_ (e.g., DEDUP_MIN_SIZE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "dedup"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "dedup"))

	v.SetEnvPrefix("DEDUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("algorithms", []string{DefaultAlgorithm})
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("min_size", DefaultMinSize)
	v.SetDefault("ignore", DefaultIgnores)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("resolution.target_dir", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.console_level", "warn")
	v.SetDefault("logging.components", map[string]string{
		"scanner": "info",
		"digest":  "info",
		"verify":  "info",
		"resolve": "info",
	})

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in the relocation target if present
	if strings.HasPrefix(cfg.Resolution.TargetDir, "~") {
		cfg.Resolution.TargetDir = filepath.Join(homeDir, cfg.Resolution.TargetDir[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "dedup"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "dedup"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Dedup Configuration

# Digest algorithms computed by default: md5, sha1, sha256, sha512,
# blake2b, crc32, xxh64
algorithms:
  - %s

# Read buffer size used when hashing files
chunk_size: %s

# Number of concurrent hashing workers (0 means one per CPU)
workers: %d

# Minimum file size to include in scans (zero-byte files are always skipped)
min_size: %q

# File name patterns excluded from scans
ignore:
  - .DS_Store
  - Thumbs.db

# Output format: detailed, plain, json, yaml
output: %s

# Duplicate resolution settings
resolution:
  # Default destination for relocated duplicates (empty means none)
  target_dir: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/dedup/dedup.log)
  path: ""
  # Console log level
  console_level: warn
  # Per-component log levels
  components:
    scanner: info
    digest: info
    verify: info
    resolve: info
`, DefaultAlgorithm, DefaultChunkSize, DefaultWorkers, DefaultMinSize, DefaultOutput)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// StateDir returns $XDG_STATE_HOME/dedup/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "dedup")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "dedup.log")
}
