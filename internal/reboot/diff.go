package reboot

import (
	"fmt"
	"maps"
	"slices"
)

// NoneVersion stands in for the booted version of a component that only the
// current system has.
const NoneVersion = "(none)"

// VersionMismatch is a component that would change on reboot.
type VersionMismatch struct {
	Name    string `json:"name"`
	Booted  string `json:"booted"`
	Current string `json:"current"`
}

// String renders "name booted→current".
func (m VersionMismatch) String() string {
	return fmt.Sprintf("%s %s→%s", m.Name, m.Booted, m.Current)
}

// Diff reports components whose version differs between booted and current,
// followed by components only current has. Components only booted has are
// not reported. Each group is ordered by name.
func Diff(booted, current Snapshot) []VersionMismatch {
	var mismatches []VersionMismatch

	for _, name := range slices.Sorted(maps.Keys(booted)) {
		if cur, ok := current[name]; ok && cur != booted[name] {
			mismatches = append(mismatches, VersionMismatch{
				Name:    name,
				Booted:  booted[name],
				Current: cur,
			})
		}
	}

	for _, name := range slices.Sorted(maps.Keys(current)) {
		if _, ok := booted[name]; !ok {
			mismatches = append(mismatches, VersionMismatch{
				Name:    name,
				Booted:  NoneVersion,
				Current: current[name],
			})
		}
	}

	return mismatches
}
