package reboot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/LunNova/i3status-nix-update-widget/internal/config"
	"github.com/LunNova/i3status-nix-update-widget/internal/modinfo"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// systemPair builds a booted root with nvidia 590.48.01 and a current root
// with nvidia 590.50.00 plus xone 0.5.0, both on kernel 6.1.0.
func systemPair(f *fixture) (booted, current string) {
	t := f.t
	t.Helper()

	booted, bootedVer := f.root(testKernel)
	oldNvidia := f.pkg("nvidia-x11-590.48.01-6.1.0", "lib/modules/6.1.0/misc", "nvidia.ko")
	symlink(t, oldNvidia, filepath.Join(bootedVer, "misc"))
	inTree := f.pkg("linux-6.1.0-modules", "lib/modules/6.1.0/kernel/drivers/net")
	symlink(t, inTree, filepath.Join(bootedVer, "kernel", "drivers", "net"))

	current, currentVer := f.root(testKernel)
	newNvidia := f.pkg("nvidia-x11-590.50.00-6.1.0", "lib/modules/6.1.0/misc", "nvidia.ko")
	symlink(t, newNvidia, filepath.Join(currentVer, "misc"))
	xone := f.pkg("xone-0.5.0", "lib/modules/6.1.0/updates", "xone_gip.ko")
	symlink(t, xone, filepath.Join(currentVer, "updates"))
	symlink(t, inTree, filepath.Join(currentVer, "kernel", "drivers", "net"))

	return booted, current
}

// pathQuerier answers by the resolved .ko path so both systems can carry nvidia.ko.
type pathQuerier map[string]modinfo.Info

func (p pathQuerier) Query(_ context.Context, koPath string) (modinfo.Info, error) {
	resolved, err := filepath.EvalSymlinks(koPath)
	if err != nil {
		return modinfo.Info{}, modinfo.ErrUnavailable
	}
	info, ok := p[resolved]
	if !ok {
		return modinfo.Info{}, modinfo.ErrUnavailable
	}
	return info, nil
}

func realpath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

func TestChecker_EndToEnd(t *testing.T) {
	f := newFixture(t)
	booted, current := systemPair(f)

	q := pathQuerier{
		realpath(t, f.store+testHash+"nvidia-x11-590.48.01-6.1.0/lib/modules/6.1.0/misc/nvidia.ko"): {Name: "nvidia", Version: "590.48.01"},
		realpath(t, f.store+testHash+"nvidia-x11-590.50.00-6.1.0/lib/modules/6.1.0/misc/nvidia.ko"): {Name: "nvidia", Version: "590.50.00"},
	}
	checker := NewChecker(f.scanner(q), booted, current)

	bootedSnap, currentSnap, err := checker.Snapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"kernel": "6.1.0", "nvidia": "590.48.01"}, bootedSnap)
	assert.Equal(t, Snapshot{"kernel": "6.1.0", "nvidia": "590.50.00", "xone": "0.5.0"}, currentSnap)

	got, err := checker.Check(context.Background())
	require.NoError(t, err)
	want := []VersionMismatch{
		{Name: "nvidia", Booted: "590.48.01", Current: "590.50.00"},
		{Name: "xone", Booted: "(none)", Current: "0.5.0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Check() mismatch (-want +got):\n%s", diff)
	}
}

func TestChecker_MissingSystems(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	checker := NewChecker(f.scanner(&fakeQuerier{}), filepath.Join(dir, "booted"), filepath.Join(dir, "current"))

	got, err := checker.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChecker_SameSystem(t *testing.T) {
	f := newFixture(t)
	_, current := systemPair(f)
	checker := NewChecker(f.scanner(&fakeQuerier{}), current, current)

	got, err := checker.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChecker_ErrorPropagates(t *testing.T) {
	f := newFixture(t)
	booted, _ := systemPair(f)
	broken := t.TempDir()
	writeFile(t, filepath.Join(broken, "kernel-modules", "lib", "modules"))

	checker := NewChecker(f.scanner(&fakeQuerier{}), booted, broken)
	_, err := checker.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current system")
}

func TestFromConfig_FallsBackWithoutModinfo(t *testing.T) {
	f := newFixture(t)
	booted, current := systemPair(f)

	cfg := config.DefaultConfig()
	cfg.Systems.Booted = booted
	cfg.Systems.Current = current
	cfg.Modules.StorePrefix = f.store
	cfg.Modinfo.Binary = filepath.Join(t.TempDir(), "no-modinfo-here")

	checker := FromConfig(cfg)
	b, c := checker.Roots()
	assert.Equal(t, booted, b)
	assert.Equal(t, current, c)

	got, err := checker.Check(context.Background())
	require.NoError(t, err)
	want := []VersionMismatch{
		{Name: "nvidia-x11", Booted: "590.48.01-6.1.0", Current: "590.50.00-6.1.0"},
		{Name: "xone", Booted: "(none)", Current: "0.5.0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Check() mismatch (-want +got):\n%s", diff)
	}
}
