package main

import (
	"fmt"
	"os"

	"github.com/LunNova/i3status-nix-update-widget/internal/config"
	"github.com/LunNova/i3status-nix-update-widget/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	bootedRoot  string
	currentRoot string

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// rootCmd prints one status-bar line and exits.
var rootCmd = &cobra.Command{
	Use:   "nix-update-widget",
	Short: "NixOS update age and reboot status for i3status-rust",
	Long: `nix-update-widget reports how old the system's flake inputs are and
whether the kernel or an out-of-tree kernel module changed since boot.

Run without arguments to print one JSON status line for a custom block.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Initialize(loaded.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = loaded
		logging.BootDebug("config loaded: booted=%s current=%s", cfg.Systems.Booted, cfg.Systems.Current)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	RunE: runStatus,
}

// checkCmd prints a human readable reboot report
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the booted system with the current system",
	Long: `Builds a version snapshot of the kernel and out-of-tree kernel modules for
both system profiles and lists every component that changes after a reboot.

Unlike the status line, errors reading the module trees are reported.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// snapshotCmd prints the version snapshot of a system root
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [root]",
	Short: "Print the kernel and module versions of a system profile",
	Long: `Prints the version snapshot of the given system root, or of both the
booted and current systems when no root is given.

Example:
  nix-update-widget snapshot /nix/var/nix/profiles/system`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshot,
}

// watchCmd keeps the status line current
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print a status line on every profile switch",
	Long: `Prints a status line at start, whenever the booted or current system
link changes, and every watch.interval. Intended for a persistent
i3status-rust custom block.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/nix-update-widget/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&bootedRoot, "booted", "", "Booted system root (overrides systems.booted)")
	rootCmd.PersistentFlags().StringVar(&currentRoot, "current", "", "Current system root (overrides systems.current)")

	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print mismatches as JSON")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if bootedRoot != "" {
		loaded.Systems.Booted = bootedRoot
	}
	if currentRoot != "" {
		loaded.Systems.Current = currentRoot
	}
	if verbose {
		loaded.Logging.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}
