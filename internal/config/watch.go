package config

import "time"

// WatchConfig configures persistent mode.
type WatchConfig struct {
	// Debounce collapses bursts of profile link events (a switch replaces several links).
	Debounce string `yaml:"debounce"`
	// Interval re-emits the status line so the age stays current.
	Interval string `yaml:"interval"`
}

// DefaultWatchConfig returns defaults for persistent mode.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Debounce: "500ms",
		Interval: "1h",
	}
}

// GetWatchDebounce returns the debounce window as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

// GetWatchInterval returns the refresh interval as a duration.
func (c *Config) GetWatchInterval() time.Duration {
	d, err := time.ParseDuration(c.Watch.Interval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}
