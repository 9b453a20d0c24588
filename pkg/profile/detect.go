package profile

import (
	"sort"

	"xcalbuild/pkg/cdb"
)

// DetectToolchain auto-detects the best-matching toolchain profile among
// candidates by tallying, for every entry in entries, the origin tags of
// whichever candidate's tool profile recognizes that entry's binary (§4.7
// "Optionally auto-detect the best-matching toolchain profile"). It returns
// the winning origin tag: one with a full match across all entries if any,
// otherwise the one with the highest partial match.
func DetectToolchain(entries []cdb.Entry, candidates []*ToolchainProfile) (string, error) {
	tally := map[string]int{}
	for _, tc := range candidates {
		for _, entry := range entries {
			if len(entry.Arguments) == 0 {
				continue
			}
			toolEntry, ok := tc.Lookup(entry.Arguments[0])
			if !ok {
				continue
			}
			for _, origin := range toolEntry.Origins() {
				tally[origin]++
			}
		}
	}
	if len(tally) == 0 {
		return "", ErrNoToolchainMatch
	}

	origins := make([]string, 0, len(tally))
	for origin := range tally {
		origins = append(origins, origin)
	}
	sort.Strings(origins)

	best, bestCount := "", -1
	for _, origin := range origins {
		count := tally[origin]
		if count == len(entries) {
			return origin, nil
		}
		if count > bestCount {
			best, bestCount = origin, count
		}
	}
	return best, nil
}
