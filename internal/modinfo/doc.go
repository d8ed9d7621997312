// Package modinfo runs the kernel module metadata tool and parses its output.
//
// The tool is invoked with a single .ko path and prints one "key:   value"
// pair per line. Only the name and version fields are consulted; every other
// line is ignored. Build systems that never substitute the version leave a
// "#VERSION#" style placeholder behind, which is never reported as a version.
//
// Any failure to obtain output (tool missing, non-zero exit, timeout) is
// reported as ErrUnavailable so callers can fall back to other sources.
package modinfo
