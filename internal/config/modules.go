package config

import "fmt"

// ModulesConfig describes where kernel modules live inside a system profile
// and how store paths are named.
type ModulesConfig struct {
	// Tree is the module tree relative to a system root.
	Tree string `yaml:"tree"`
	// SingleDirs are directories under the kernel version that each hold one module package.
	SingleDirs []string `yaml:"single_dirs"`
	// DriversDir holds per-package symlinks, relative to the kernel version directory.
	DriversDir string `yaml:"drivers_dir"`
	// InTreeFragments must all occur in a driver link target for it to count as in-tree.
	InTreeFragments []string `yaml:"in_tree_fragments"`
	// StorePrefix is the store directory prefix of link targets.
	StorePrefix string `yaml:"store_prefix"`
	// StoreHashLength is the length of the hash plus its separator.
	StoreHashLength int `yaml:"store_hash_length"`
}

// DefaultModulesConfig returns the NixOS layout.
func DefaultModulesConfig() ModulesConfig {
	return ModulesConfig{
		Tree:            "kernel-modules/lib/modules",
		SingleDirs:      []string{"misc", "updates"},
		DriversDir:      "kernel/drivers",
		InTreeFragments: []string{"linux-", "-modules"},
		StorePrefix:     "/nix/store/",
		StoreHashLength: 33,
	}
}

// Validate checks the layout.
func (m ModulesConfig) Validate() error {
	if m.Tree == "" {
		return fmt.Errorf("modules.tree must be set")
	}
	if m.StoreHashLength <= 0 {
		return fmt.Errorf("modules.store_hash_length must be positive, got %d", m.StoreHashLength)
	}
	for _, f := range m.InTreeFragments {
		if f == "" {
			return fmt.Errorf("modules.in_tree_fragments must not contain empty entries")
		}
	}
	return nil
}
