package reboot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/LunNova/i3status-nix-update-widget/internal/config"
	"github.com/LunNova/i3status-nix-update-widget/internal/logging"
)

// KernelKey is the snapshot key of the kernel itself. Module names share the
// key space; a module literally named "kernel" would overwrite it, which no
// real module does.
const KernelKey = "kernel"

// Snapshot maps component names to version strings for one system root.
type Snapshot map[string]string

// Layout describes where modules live below a system root.
type Layout struct {
	// ModuleTree is relative to the system root and holds one directory per kernel version.
	ModuleTree string
	// SingleModuleDirs are relative to the kernel version directory; each is one module package.
	SingleModuleDirs []string
	// DriversDir is relative to the kernel version directory; its symlinks are candidates.
	DriversDir string
	// InTreeFragments must all occur in a driver link target to exclude it.
	InTreeFragments []string
}

// NewLayout converts the configured module layout.
func NewLayout(cfg config.ModulesConfig) Layout {
	return Layout{
		ModuleTree:       cfg.Tree,
		SingleModuleDirs: cfg.SingleDirs,
		DriversDir:       cfg.DriversDir,
		InTreeFragments:  cfg.InTreeFragments,
	}
}

// Scanner builds snapshots.
type Scanner struct {
	layout     Layout
	strategies []Strategy
}

// NewScanner creates a scanner that names modules with strategies, in order.
func NewScanner(layout Layout, strategies ...Strategy) *Scanner {
	return &Scanner{layout: layout, strategies: strategies}
}

// BuildSnapshot reads the kernel and out-of-tree module versions under root.
// A root without a module tree yields an empty snapshot.
func (s *Scanner) BuildSnapshot(ctx context.Context, root string) (Snapshot, error) {
	snap := make(Snapshot)

	modulesDir := filepath.Join(root, s.layout.ModuleTree)
	if _, err := os.Stat(modulesDir); err != nil {
		if isAbsent(err) {
			logging.ScanDebug("no module tree at %s", modulesDir)
			return snap, nil
		}
		return nil, fmt.Errorf("failed to stat module tree %s: %w", modulesDir, err)
	}

	kernel, ok, err := kernelVersion(modulesDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		logging.ScanDebug("no kernel version directory in %s", modulesDir)
		return snap, nil
	}
	snap[KernelKey] = kernel

	modules, err := s.ScanOOTModules(ctx, filepath.Join(modulesDir, kernel))
	if err != nil {
		return nil, err
	}
	for name, version := range modules {
		snap[name] = version
	}

	logging.ScanDebug("snapshot of %s: kernel=%s, %d out-of-tree modules", root, kernel, len(modules))
	return snap, nil
}

// kernelVersion returns the first entry of modulesDir whose name starts with an ASCII digit.
func kernelVersion(modulesDir string) (string, bool, error) {
	entries, err := os.ReadDir(modulesDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to read modules directory %s: %w", modulesDir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if name != "" && isDigit(name[0]) {
			return name, true, nil
		}
	}
	return "", false, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isAbsent reports whether err means the path is not there, including a
// path component that is not a directory.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
