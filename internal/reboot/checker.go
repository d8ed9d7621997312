package reboot

import (
	"context"
	"fmt"

	"github.com/LunNova/i3status-nix-update-widget/internal/config"
	"github.com/LunNova/i3status-nix-update-widget/internal/logging"
	"github.com/LunNova/i3status-nix-update-widget/internal/modinfo"

	"golang.org/x/sync/errgroup"
)

// Checker compares the booted system with the current one.
type Checker struct {
	scanner *Scanner
	booted  string
	current string
}

// NewChecker creates a checker for an explicit pair of system roots.
func NewChecker(scanner *Scanner, booted, current string) *Checker {
	return &Checker{scanner: scanner, booted: booted, current: current}
}

// FromConfig wires the metadata tool and the store path fallback from cfg.
func FromConfig(cfg *config.Config) *Checker {
	runner := modinfo.NewRunner(cfg.Modinfo.Binary, cfg.GetModinfoTimeout())
	scanner := NewScanner(NewLayout(cfg.Modules),
		ModinfoStrategy(runner),
		StorePathStrategy(cfg.Modules.StorePrefix, cfg.Modules.StoreHashLength),
	)
	return NewChecker(scanner, cfg.Systems.Booted, cfg.Systems.Current)
}

// Scanner returns the scanner used for both roots.
func (c *Checker) Scanner() *Scanner {
	return c.scanner
}

// Roots returns the booted and current system roots.
func (c *Checker) Roots() (booted, current string) {
	return c.booted, c.current
}

// Snapshots builds both snapshots concurrently. The first failure cancels the other build.
func (c *Checker) Snapshots(ctx context.Context) (booted, current Snapshot, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		booted, err = c.scanner.BuildSnapshot(gctx, c.booted)
		if err != nil {
			return fmt.Errorf("booted system %s: %w", c.booted, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		current, err = c.scanner.BuildSnapshot(gctx, c.current)
		if err != nil {
			return fmt.Errorf("current system %s: %w", c.current, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return booted, current, nil
}

// Check returns the components that differ after a reboot.
func (c *Checker) Check(ctx context.Context) ([]VersionMismatch, error) {
	booted, current, err := c.Snapshots(ctx)
	if err != nil {
		return nil, err
	}
	mismatches := Diff(booted, current)
	logging.Scan("reboot check: %d booted, %d current components, %d mismatches",
		len(booted), len(current), len(mismatches))
	return mismatches, nil
}
