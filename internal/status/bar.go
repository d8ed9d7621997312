package status

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LunNova/i3status-nix-update-widget/internal/config"
	"github.com/LunNova/i3status-nix-update-widget/internal/logging"
	"github.com/LunNova/i3status-nix-update-widget/internal/reboot"
)

// BarCommand is one status-bar update.
type BarCommand struct {
	Icon  string `json:"icon"`
	State State  `json:"state"`
	Text  string `json:"text"`
}

// JSON encodes the command as a single line.
func (b BarCommand) JSON() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("could not serialize status: %w", err)
	}
	return data, nil
}

// RebootChecker reports components that change on reboot.
type RebootChecker interface {
	Check(ctx context.Context) ([]reboot.VersionMismatch, error)
}

// Generator assembles status lines.
type Generator struct {
	Icon       string
	Modified   time.Time // zero when unknown
	Thresholds Thresholds
	Checker    RebootChecker
	Now        func() time.Time
}

// NewGenerator builds a generator from cfg. checker may be nil to skip the reboot check.
func NewGenerator(cfg *config.Config, checker RebootChecker) *Generator {
	var modified time.Time
	if cfg.Age.ModifiedDate > 0 {
		modified = time.Unix(cfg.Age.ModifiedDate, 0).UTC()
	}
	return &Generator{
		Icon:       cfg.Status.Icon,
		Modified:   modified,
		Thresholds: ThresholdsFromConfig(cfg.Age),
		Checker:    checker,
		Now:        time.Now,
	}
}

// Generate classifies the age and folds in the reboot check. A failed check
// is logged and counts as no mismatch.
func (g *Generator) Generate(ctx context.Context) BarCommand {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	var mismatches []reboot.VersionMismatch
	if g.Checker != nil {
		var err error
		mismatches, err = g.Checker.Check(ctx)
		if err != nil {
			logging.StatusWarn("reboot check failed, assuming no reboot needed: %v", err)
			mismatches = nil
		}
	}
	return Build(g.Icon, g.Modified, now(), g.Thresholds, mismatches)
}

// Build computes the bar command. Mismatches force Critical and are listed
// after the age.
func Build(icon string, modified, now time.Time, th Thresholds, mismatches []reboot.VersionMismatch) BarCommand {
	var state State
	var text string
	if modified.IsZero() {
		state = StateInfo
		text = "Age: ?"
	} else {
		days := AgeDays(modified, now)
		state = Classify(days, th)
		text = fmt.Sprintf("Age: %d", days)
	}

	if len(mismatches) > 0 {
		state = StateCritical
		parts := make([]string, 0, len(mismatches))
		for _, m := range mismatches {
			parts = append(parts, m.String())
		}
		text = fmt.Sprintf("%s | Reboot: %s", text, strings.Join(parts, ", "))
	}

	logging.Get(logging.CategoryStatus).Debugw("status built", "state", state, "mismatches", len(mismatches))
	return BarCommand{Icon: icon, State: state, Text: text}
}
