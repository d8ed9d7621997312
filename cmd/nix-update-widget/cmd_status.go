package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/LunNova/i3status-nix-update-widget/internal/logging"
	"github.com/LunNova/i3status-nix-update-widget/internal/reboot"
	"github.com/LunNova/i3status-nix-update-widget/internal/status"
	"github.com/LunNova/i3status-nix-update-widget/internal/watch"

	"github.com/spf13/cobra"
)

var checkJSON bool

// runStatus prints a single status-bar line.
func runStatus(cmd *cobra.Command, args []string) error {
	gen := status.NewGenerator(cfg, reboot.FromConfig(cfg))
	return writeLine(cmd.OutOrStdout(), gen.Generate(cmd.Context()))
}

// runCheck prints the reboot report. Reconciliation errors are returned.
func runCheck(cmd *cobra.Command, args []string) error {
	checker := reboot.FromConfig(cfg)
	mismatches, err := checker.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("reboot check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if checkJSON {
		if mismatches == nil {
			mismatches = []reboot.VersionMismatch{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(mismatches)
	}

	booted, current := checker.Roots()
	_, err = fmt.Fprint(out, status.RenderReport(booted, current, mismatches))
	return err
}

// runSnapshot prints the snapshot of one root, or of both configured roots.
func runSnapshot(cmd *cobra.Command, args []string) error {
	checker := reboot.FromConfig(cfg)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		snap, err := checker.Scanner().BuildSnapshot(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", args[0], err)
		}
		_, err = fmt.Fprint(out, status.RenderSnapshot(args[0], snap))
		return err
	}

	booted, current, err := checker.Snapshots(cmd.Context())
	if err != nil {
		return err
	}
	bootedPath, currentPath := checker.Roots()
	if _, err := fmt.Fprint(out, status.RenderSnapshot("booted: "+bootedPath, booted)); err != nil {
		return err
	}
	_, err = fmt.Fprint(out, "\n", status.RenderSnapshot("current: "+currentPath, current))
	return err
}

// runWatch prints a status line now and on every trigger until interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logging.Watch("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return watchStatus(ctx, cmd.OutOrStdout())
}

// watchStatus runs the watch loop until ctx is done or a write fails.
func watchStatus(ctx context.Context, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen := status.NewGenerator(cfg, reboot.FromConfig(cfg))
	if err := writeLine(out, gen.Generate(ctx)); err != nil {
		return err
	}

	var writeErr error
	w, err := watch.New(
		[]string{cfg.Systems.Booted, cfg.Systems.Current},
		cfg.GetWatchDebounce(),
		cfg.GetWatchInterval(),
		func(ctx context.Context, reason watch.Reason) {
			logging.WatchDebug("re-evaluating (%s)", reason)
			if err := writeLine(out, gen.Generate(ctx)); err != nil {
				logging.WatchError("writing status line: %v", err)
				writeErr = err
				cancel()
			}
		},
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}

	<-w.Done()
	w.Stop()
	return writeErr
}

func writeLine(out io.Writer, line status.BarCommand) error {
	data, err := line.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
