package modinfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/LunNova/i3status-nix-update-widget/internal/logging"
)

// ErrUnavailable means the tool produced no usable output.
var ErrUnavailable = errors.New("module metadata unavailable")

// execCommandContext is swapped out by tests.
var execCommandContext = exec.CommandContext

// DefaultTimeout bounds a single invocation when the runner has none.
const DefaultTimeout = 10 * time.Second

// Info holds the fields read from the tool output.
type Info struct {
	Name    string
	Version string
}

// Complete reports whether both name and version were found.
func (i Info) Complete() bool {
	return i.Name != "" && i.Version != ""
}

// IsPlaceholder reports whether v is an unsubstituted build placeholder such as "#VERSION#".
func IsPlaceholder(v string) bool {
	return strings.HasPrefix(v, "#")
}

// Parse extracts name and version from "key: value" lines.
// Later lines win, except that placeholder versions never replace anything.
func Parse(output string) Info {
	var info Info
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if v, ok := strings.CutPrefix(line, "name:"); ok {
			if v = strings.TrimSpace(v); v != "" {
				info.Name = v
			}
			continue
		}
		if v, ok := strings.CutPrefix(line, "version:"); ok {
			if v = strings.TrimSpace(v); v != "" && !IsPlaceholder(v) {
				info.Version = v
			}
		}
	}
	return info
}

// Runner invokes the metadata tool.
type Runner struct {
	Binary  string
	Timeout time.Duration
}

// NewRunner creates a runner for binary, bounded by timeout per call.
func NewRunner(binary string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{Binary: binary, Timeout: timeout}
}

// Query runs the tool against koPath and parses its output.
// Tool failures wrap ErrUnavailable; cancellation of ctx is returned as is.
func (r *Runner) Query(ctx context.Context, koPath string) (Info, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logging.ModinfoDebug("modinfo: binary=%s, path=%s, timeout=%s", r.Binary, koPath, timeout)

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := execCommandContext(execCtx, r.Binary, koPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Info{}, ctx.Err()
		}
		if execCtx.Err() == context.DeadlineExceeded {
			logging.Modinfo("modinfo timed out after %s: %s", timeout, koPath)
			return Info{}, fmt.Errorf("%w: %s timed out after %s", ErrUnavailable, r.Binary, timeout)
		}
		logging.ModinfoDebug("modinfo failed: %s (%v) %s", koPath, err, strings.TrimSpace(stderr.String()))
		return Info{}, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, r.Binary, koPath, err)
	}

	info := Parse(stdout.String())
	logging.ModinfoDebug("modinfo completed: %s name=%q version=%q", koPath, info.Name, info.Version)
	return info, nil
}
