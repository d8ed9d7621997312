package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/LunNova/i3status-nix-update-widget/internal/logging"

	"gopkg.in/yaml.v3"
)

// Build-time defaults, set with
//
//	-ldflags "-X github.com/LunNova/i3status-nix-update-widget/internal/config.BuildModifiedDate=1700000000"
//
// The NixOS module stamps the flake.lock modification time here when the
// system is rebuilt.
var (
	BuildModifiedDate = ""
	BuildIcon         = "update"
)

// Config holds all nix-update-widget configuration.
type Config struct {
	// System profile roots
	Systems SystemsConfig `yaml:"systems"`

	// Kernel module tree layout
	Modules ModulesConfig `yaml:"modules"`

	// External metadata tool
	Modinfo ModinfoConfig `yaml:"modinfo"`

	// Flake input age thresholds
	Age AgeConfig `yaml:"age"`

	// Status-bar output
	Status StatusConfig `yaml:"status"`

	// Persistent watch mode
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging logging.Config `yaml:"logging"`
}

// SystemsConfig names the two profiles being reconciled.
type SystemsConfig struct {
	Booted  string `yaml:"booted"`
	Current string `yaml:"current"`
}

// ModinfoConfig configures the external module metadata tool.
type ModinfoConfig struct {
	Binary  string `yaml:"binary"`
	Timeout string `yaml:"timeout"`
}

// StatusConfig configures the status-bar line.
type StatusConfig struct {
	Icon string `yaml:"icon"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Systems: SystemsConfig{
			Booted:  "/run/booted-system",
			Current: "/run/current-system",
		},
		Modules: DefaultModulesConfig(),
		Modinfo: ModinfoConfig{
			Binary:  "modinfo",
			Timeout: "10s",
		},
		Age:    DefaultAgeConfig(),
		Status: StatusConfig{Icon: BuildIcon},
		Watch:  DefaultWatchConfig(),
		Logging: logging.Config{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/nix-update-widget/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "nix-update-widget", "config.yaml")
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NIX_UPDATE_WIDGET_BOOTED_SYSTEM"); v != "" {
		c.Systems.Booted = v
	}
	if v := os.Getenv("NIX_UPDATE_WIDGET_CURRENT_SYSTEM"); v != "" {
		c.Systems.Current = v
	}
	if v := os.Getenv("NIX_UPDATE_WIDGET_MODINFO"); v != "" {
		c.Modinfo.Binary = v
	}
	if v := os.Getenv("NIX_UPDATE_WIDGET_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NIX_UPDATE_WIDGET_MODIFIED_DATE"); v != "" {
		if ts, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			c.Age.ModifiedDate = ts
		}
	}
}

// GetModinfoTimeout returns the metadata tool timeout as a duration.
func (c *Config) GetModinfoTimeout() time.Duration {
	d, err := time.ParseDuration(c.Modinfo.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Systems.Booted == "" || c.Systems.Current == "" {
		return fmt.Errorf("systems.booted and systems.current must both be set")
	}
	if c.Modinfo.Binary == "" {
		return fmt.Errorf("modinfo.binary must be set")
	}
	if err := c.Modules.Validate(); err != nil {
		return err
	}
	if err := c.Age.Validate(); err != nil {
		return err
	}
	return nil
}
