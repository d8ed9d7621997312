// Package status turns the flake input age and the reboot check into a
// status-bar line, and renders the human-readable reboot report.
package status

import (
	"time"

	"github.com/LunNova/i3status-nix-update-widget/internal/config"
)

// State is the severity understood by the status bar.
type State string

const (
	StateInfo     State = "Info"
	StateGood     State = "Good"
	StateWarning  State = "Warning"
	StateCritical State = "Critical"
)

// Thresholds are age limits in days.
type Thresholds struct {
	Good      int64
	Update    int64
	OutOfDate int64
}

// ThresholdsFromConfig copies the configured limits.
func ThresholdsFromConfig(cfg config.AgeConfig) Thresholds {
	return Thresholds{Good: cfg.GoodDays, Update: cfg.UpdateDays, OutOfDate: cfg.OutOfDateDays}
}

// AgeDays returns the whole days between modified and now, truncated toward zero.
func AgeDays(modified, now time.Time) int64 {
	return int64(now.Sub(modified) / (24 * time.Hour))
}

// Classify maps an age to a state. Ages between Good and Update, which a
// valid configuration never leaves, are Info.
func Classify(days int64, th Thresholds) State {
	switch {
	case days >= th.OutOfDate:
		return StateCritical
	case days >= th.Update:
		return StateWarning
	case days <= th.Good:
		return StateGood
	default:
		return StateInfo
	}
}
