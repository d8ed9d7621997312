package reboot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/LunNova/i3status-nix-update-widget/internal/modinfo"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testHash is a 32 character store hash plus its separator.
var testHash = strings.Repeat("0", 32) + "-"

const testKernel = "6.1.0"

// fakeQuerier answers metadata queries by .ko base name.
type fakeQuerier struct {
	mu    sync.Mutex
	infos map[string]modinfo.Info
	errs  map[string]error
	calls []string
}

func (f *fakeQuerier) Query(_ context.Context, koPath string) (modinfo.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	base := filepath.Base(koPath)
	f.calls = append(f.calls, base)
	if err, ok := f.errs[base]; ok {
		return modinfo.Info{}, err
	}
	return f.infos[base], nil
}

func (f *fakeQuerier) called(base string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == base {
			return true
		}
	}
	return false
}

// fixture builds synthetic system roots that share one store directory.
type fixture struct {
	t     *testing.T
	store string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := filepath.Join(t.TempDir(), "store") + string(filepath.Separator)
	mkdir(t, store)
	return &fixture{t: t, store: store}
}

// scanner uses the fixture's store prefix and the given querier.
func (f *fixture) scanner(q MetadataQuerier) *Scanner {
	return NewScanner(Layout{
		ModuleTree:       "kernel-modules/lib/modules",
		SingleModuleDirs: []string{"misc", "updates"},
		DriversDir:       "kernel/drivers",
		InTreeFragments:  []string{"linux-", "-modules"},
	}, ModinfoStrategy(q), StorePathStrategy(f.store, len(testHash)))
}

// pkg creates <store><hash><pkgName>/<sub> containing files and returns it.
func (f *fixture) pkg(pkgName, sub string, files ...string) string {
	f.t.Helper()
	dir := filepath.Join(f.store+testHash+pkgName, sub)
	mkdir(f.t, dir)
	for _, name := range files {
		writeFile(f.t, filepath.Join(dir, name))
	}
	return dir
}

// root creates a system root with a module tree for kernel and returns the root
// and the kernel version directory.
func (f *fixture) root(kernel string) (string, string) {
	f.t.Helper()
	root := f.t.TempDir()
	versionDir := filepath.Join(root, "kernel-modules", "lib", "modules", kernel)
	mkdir(f.t, versionDir)
	return root, versionDir
}

func mkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte("\x7fELF"), 0644); err != nil {
		t.Fatal(err)
	}
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	mkdir(t, filepath.Dir(link))
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}
}
