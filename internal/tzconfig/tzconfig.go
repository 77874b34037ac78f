// Package tzconfig loads the layered configuration tzatlas's subcommands
// share: a YAML file under the user's config directory, overridable by
// environment variables and command-line flags through viper's usual
// precedence order.
package tzconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings tzatlas's compile and fetch subcommands read.
type Config struct {
	// SourceDir is the directory containing tzdata source files (the
	// "africa", "europe", "northamerica", etc. stanza files).
	SourceDir string `mapstructure:"source_dir" json:"source_dir"`
	// DestDir is where compiled TZif output is written.
	DestDir string `mapstructure:"dest_dir" json:"dest_dir"`
	// CacheDir is where downloaded tzdata releases and their manifest are
	// kept between fetch invocations.
	CacheDir string `mapstructure:"cache_dir" json:"cache_dir"`
	// Debug enables verbose slog output at Debug level.
	Debug bool `mapstructure:"debug" json:"debug"`
}

var defaultConfig = Config{
	SourceDir: ".",
	DestDir:   "./zoneinfo",
	CacheDir:  "",
	Debug:     false,
}

// Load reads tzatlas's configuration from $XDG_CONFIG_HOME/tzatlas/config.yaml
// (or the OS-specific equivalent), falling back to the current directory and
// then to built-in defaults. Environment variables prefixed TZATLAS_ take
// precedence over the file, matching viper's usual layering.
func Load() (*Config, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")
	v.SetEnvPrefix("TZATLAS")
	v.AutomaticEnv()

	v.SetDefault("source_dir", defaultConfig.SourceDir)
	v.SetDefault("dest_dir", defaultConfig.DestDir)
	v.SetDefault("cache_dir", defaultCacheDir(configDir))
	v.SetDefault("debug", defaultConfig.Debug)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func defaultCacheDir(configDir string) string {
	return filepath.Join(configDir, "cache")
}

// ConfigDir returns the directory tzatlas stores its configuration in.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tzatlas"), nil
	}
	if base, err := os.UserConfigDir(); err == nil && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "tzatlas"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tzatlas"), nil
}

// Validate checks that a loaded Config is internally consistent enough to
// run a compile: the source directory must exist.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourceDir) == "" {
		return fmt.Errorf("source_dir cannot be empty")
	}
	info, err := os.Stat(c.SourceDir)
	if err != nil {
		return fmt.Errorf("source_dir %q: %w", c.SourceDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source_dir %q is not a directory", c.SourceDir)
	}
	return nil
}
