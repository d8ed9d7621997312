// Package watch re-evaluates the widget when a system profile link changes.
//
// NixOS activation replaces /run/current-system with an atomic rename, so the
// watcher observes the parent directories of the configured roots and filters
// events by the roots' base names.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/LunNova/i3status-nix-update-widget/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Reason says why a re-evaluation was triggered.
type Reason string

const (
	ReasonSwitch   Reason = "switch"
	ReasonInterval Reason = "interval"
)

// Func is called from the watcher goroutine, never concurrently with itself.
type Func func(ctx context.Context, reason Reason)

// Watcher triggers a callback on profile switches and on a fixed interval.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dirs     []string
	names    map[string]bool
	debounce time.Duration
	interval time.Duration
	onChange Func
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopped  bool
}

// New creates a watcher for the given system roots. A zero interval disables
// periodic re-evaluation.
func New(roots []string, debounce, interval time.Duration, onChange Func) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watch: nil callback")
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("watch: no roots")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		names:    make(map[string]bool),
		debounce: debounce,
		interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	seen := make(map[string]bool)
	for _, root := range roots {
		clean := filepath.Clean(root)
		w.names[filepath.Base(clean)] = true
		dir := filepath.Dir(clean)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if w.stopped {
		return fmt.Errorf("watch: watcher already stopped")
	}

	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logging.Watch("watching %s", dir)
	}

	w.running = true
	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the inotify handle. It is safe to
// call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	running := w.running
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	if running {
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.WatchError("closing watcher: %v", err)
	}
	logging.Watch("watcher stopped")
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var debounce *time.Timer
	var pending <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			logging.WatchDebug("%s: %s", event.Op, event.Name)
			if debounce == nil {
				debounce = time.NewTimer(w.debounce)
			} else {
				debounce.Reset(w.debounce)
			}
			pending = debounce.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("watcher error: %v", err)

		case <-pending:
			pending = nil
			logging.Watch("profile switch detected")
			w.onChange(ctx, ReasonSwitch)

		case <-tick:
			w.onChange(ctx, ReasonInterval)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
		return false
	}
	return w.names[filepath.Base(event.Name)]
}
