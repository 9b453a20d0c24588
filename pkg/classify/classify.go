// Package classify implements the work-item classifier (C4): §4.2's
// "Parse a work item" wrapped with a binary-lookup precheck (§4.4).
package classify

import (
	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/profile"
)

// Classify looks up entry's binary in toolchain and, if recognized, parses
// it into a Parsed Work Item via profile.ParseWorkItem. Entries with no
// arguments, no directory, or an unrecognized binary are skipped silently
// (§4.4, §7.iii): Classify returns (nil, nil) for those.
func Classify(toolchain *profile.ToolchainProfile, entry cdb.Entry, warn profile.Warnf) (*profile.WorkItem, error) {
	if len(entry.Arguments) == 0 || entry.Directory == "" {
		return nil, nil
	}
	tool, ok := toolchain.Lookup(entry.Arguments[0])
	if !ok {
		return nil, nil
	}
	return profile.ParseWorkItem(tool.Profile, entry, warn)
}
