package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Components   map[string]string `mapstructure:"components"`
}

// HashConfig configures content hashing.
type HashConfig struct {
	// MaxSize is the routine-scan hashing threshold, human readable
	// (e.g. "1 MiB").
	MaxSize string `mapstructure:"max_size"`
}

// StoreConfig configures the index store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	// Roots is the ordered list of allowed root paths.
	Roots []string `mapstructure:"roots"`

	BlockSymlinks bool          `mapstructure:"block_symlinks"`
	StaleRunAge   time.Duration `mapstructure:"stale_run_age"`
	Hash          HashConfig    `mapstructure:"hash"`
	Store         StoreConfig   `mapstructure:"store"`
	Logging       LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/fidx/config.yaml
//   - $HOME/.config/fidx/config.yaml
//
// Environment variables are prefixed with FIDX_ (e.g. FIDX_BLOCK_SYMLINKS).
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, "fidx"))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "fidx"))
		}
	}

	v.SetEnvPrefix("FIDX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("roots", []string{})
	v.SetDefault("block_symlinks", DefaultBlockSymlinks)
	v.SetDefault("stale_run_age", DefaultStaleRunAge)
	v.SetDefault("hash.max_size", DefaultHashMaxSize)
	v.SetDefault("store.path", DefaultDBPath())
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty means use the default state path
	v.SetDefault("logging.components", map[string]string{
		"scanner": "info",
		"indexer": "info",
		"store":   "warn",
	})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile == "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" && !os.IsNotExist(err) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is acceptable; defaults apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for i, root := range cfg.Roots {
		expanded, err := ExpandPath(root)
		if err != nil {
			return nil, err
		}
		cfg.Roots[i] = expanded
	}
	return &cfg, nil
}

// HashMaxSize parses the hashing threshold into bytes.
func (c *Config) HashMaxSize() (int64, error) {
	n, err := humanize.ParseBytes(c.Hash.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("invalid hash.max_size %q: %w", c.Hash.MaxSize, err)
	}
	return int64(n), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
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

// DataDir returns $XDG_DATA_HOME/fidx/ for the index database.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "fidx")
}

// DefaultDBPath returns the default index database path.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "index.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}
