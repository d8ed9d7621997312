package reboot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LunNova/i3status-nix-update-widget/internal/logging"
)

// ScanOOTModules names the out-of-tree modules below one kernel version directory.
func (s *Scanner) ScanOOTModules(ctx context.Context, versionDir string) (Snapshot, error) {
	versions := make(Snapshot)

	// misc/ has nvidia, updates/ has xone
	for _, dir := range s.layout.SingleModuleDirs {
		path := filepath.Join(versionDir, dir)
		fi, err := os.Lstat(path)
		if err != nil {
			if isAbsent(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if fi.Mode()&os.ModeSymlink == 0 && !fi.IsDir() {
			continue
		}
		if err := s.resolveInto(ctx, versions, path); err != nil {
			return nil, err
		}
	}

	if s.layout.DriversDir == "" {
		return versions, nil
	}

	driversDir := filepath.Join(versionDir, s.layout.DriversDir)
	if _, err := os.Stat(driversDir); err != nil {
		if isAbsent(err) {
			return versions, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", driversDir, err)
	}
	entries, err := os.ReadDir(driversDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read drivers directory %s: %w", driversDir, err)
	}
	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join(driversDir, e.Name())
		target, err := os.Readlink(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read driver link %s: %w", path, err)
		}
		if IsInTree(target, s.layout.InTreeFragments) {
			continue
		}
		logging.ScanDebug("out-of-tree driver link %s -> %s", path, target)
		if err := s.resolveInto(ctx, versions, path); err != nil {
			return nil, err
		}
	}

	return versions, nil
}

func (s *Scanner) resolveInto(ctx context.Context, versions Snapshot, path string) error {
	mv, ok, err := s.ResolveModuleVersion(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		logging.ScanDebug("could not name module at %s, skipping", path)
		return nil
	}
	versions[mv.Name] = mv.Version
	return nil
}

// IsInTree reports whether a driver link target belongs to the kernel's own
// module package, i.e. contains every fragment. No fragments means nothing is in-tree.
func IsInTree(target string, fragments []string) bool {
	if len(fragments) == 0 {
		return false
	}
	for _, f := range fragments {
		if !strings.Contains(target, f) {
			return false
		}
	}
	return true
}
