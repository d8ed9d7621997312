package reboot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LunNova/i3status-nix-update-widget/internal/logging"
	"github.com/LunNova/i3status-nix-update-widget/internal/modinfo"
)

// ModuleVersion is a resolved (name, version) pair.
type ModuleVersion struct {
	Name    string
	Version string
}

// Strategy names the module at modulePath. ok is false when it cannot; err is
// reserved for existing resources that could not be read.
type Strategy func(ctx context.Context, modulePath string) (mv ModuleVersion, ok bool, err error)

// MetadataQuerier reads module metadata from a .ko file.
type MetadataQuerier interface {
	Query(ctx context.Context, koPath string) (modinfo.Info, error)
}

// ResolveModuleVersion tries each strategy in order; the first success wins.
func (s *Scanner) ResolveModuleVersion(ctx context.Context, modulePath string) (ModuleVersion, bool, error) {
	for _, strategy := range s.strategies {
		if err := ctx.Err(); err != nil {
			return ModuleVersion{}, false, err
		}
		mv, ok, err := strategy(ctx, modulePath)
		if err != nil {
			return ModuleVersion{}, false, err
		}
		if ok {
			return mv, true, nil
		}
	}
	return ModuleVersion{}, false, nil
}

// ModinfoStrategy asks the metadata tool about the first .ko file directly
// inside modulePath. Tool failures and placeholder versions yield nothing.
func ModinfoStrategy(q MetadataQuerier) Strategy {
	return func(ctx context.Context, modulePath string) (ModuleVersion, bool, error) {
		ko, ok, err := findKoFile(modulePath)
		if err != nil || !ok {
			return ModuleVersion{}, false, err
		}

		info, err := q.Query(ctx, ko)
		if err != nil {
			if errors.Is(err, modinfo.ErrUnavailable) {
				logging.ScanDebug("no metadata for %s: %v", ko, err)
				return ModuleVersion{}, false, nil
			}
			return ModuleVersion{}, false, err
		}
		if !info.Complete() {
			logging.ScanDebug("incomplete metadata for %s: name=%q version=%q", ko, info.Name, info.Version)
			return ModuleVersion{}, false, nil
		}
		return ModuleVersion{Name: info.Name, Version: info.Version}, true, nil
	}
}

// findKoFile returns the first entry of dir whose name contains ".ko".
func findKoFile(dir string) (string, bool, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if isAbsent(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return "", false, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, fmt.Errorf("failed to read module directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".ko") {
			return filepath.Join(dir, e.Name()), true, nil
		}
	}
	return "", false, nil
}

// StorePathStrategy names a module from its symlink target,
// <storePrefix><hash><name>-<version>/..., where the hash (including its
// trailing separator) is hashLen bytes long.
func StorePathStrategy(storePrefix string, hashLen int) Strategy {
	return func(_ context.Context, modulePath string) (ModuleVersion, bool, error) {
		fi, err := os.Lstat(modulePath)
		if err != nil {
			if isAbsent(err) {
				return ModuleVersion{}, false, nil
			}
			return ModuleVersion{}, false, fmt.Errorf("failed to stat %s: %w", modulePath, err)
		}
		if fi.Mode()&os.ModeSymlink == 0 {
			return ModuleVersion{}, false, nil
		}

		target, err := os.Readlink(modulePath)
		if err != nil {
			return ModuleVersion{}, false, fmt.Errorf("failed to read symlink %s: %w", modulePath, err)
		}
		mv, ok := ParseStorePath(target, storePrefix, hashLen)
		return mv, ok, nil
	}
}

// ParseStorePath extracts (name, version) from the package directory of a store path.
func ParseStorePath(target, storePrefix string, hashLen int) (ModuleVersion, bool) {
	rest, ok := strings.CutPrefix(target, storePrefix)
	if !ok {
		return ModuleVersion{}, false
	}
	pkg, _, _ := strings.Cut(rest, "/")
	if hashLen < 0 || len(pkg) <= hashLen {
		return ModuleVersion{}, false
	}
	name, version, ok := SplitNameVersion(pkg[hashLen:])
	if !ok {
		return ModuleVersion{}, false
	}
	return ModuleVersion{Name: name, Version: version}, true
}

// SplitNameVersion splits "foo-1.2.3" into ("foo", "1.2.3") at the leftmost
// hyphen that is followed by an ASCII digit.
func SplitNameVersion(s string) (name, version string, ok bool) {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '-' && isDigit(s[i+1]) {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
