// Package reboot decides whether the running kernel or its out-of-tree
// modules differ from the ones in the current system profile.
//
// A Scanner reads one system root into a Snapshot (component name to version
// string). The kernel version is the first entry of the module tree whose
// name starts with a digit; out-of-tree modules are found under the kernel
// version directory and named by an ordered chain of strategies. Diff then
// compares the booted and current snapshots.
//
// Missing optional resources (module tree, kernel version, .ko files, tool
// output) are never errors. Existing resources that cannot be read are.
package reboot
