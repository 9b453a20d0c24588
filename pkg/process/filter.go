package process

import "github.com/zabawaba99/go-gitignore"

// ListFilter is a gitignore-pattern list with a blacklist/whitelist
// convention (§4.6 "a directory-name filter (first token distinguishes
// black/allow list)"): a leading "+" on the first raw pattern switches the
// whole list to whitelist mode (only matches are permitted); otherwise the
// list behaves as a blacklist (matches are denied). An empty filter permits
// everything, matching the teacher's empty-ProjectPathExclude behavior.
type ListFilter struct {
	allow    bool
	patterns []string
}

// NewListFilter builds a ListFilter from raw patterns as they'd appear in a
// CLI filter flag or run configuration.
func NewListFilter(raw []string) ListFilter {
	if len(raw) == 0 {
		return ListFilter{}
	}
	if len(raw[0]) > 0 && raw[0][0] == '+' {
		patterns := append([]string{raw[0][1:]}, raw[1:]...)
		return ListFilter{allow: true, patterns: patterns}
	}
	return ListFilter{patterns: raw}
}

// Permits reports whether subject passes the filter.
func (f ListFilter) Permits(subject string) bool {
	if len(f.patterns) == 0 {
		return true
	}
	matched := false
	for _, p := range f.patterns {
		if gitignore.Match(p, subject) {
			matched = true
			break
		}
	}
	if f.allow {
		return matched
	}
	return !matched
}

// Filters bundles the output filters the build processor carries (§4.6,
// §6 "output filters (directory, link-target, whitelist/blacklist source
// files)").
type Filters struct {
	Directories ListFilter
	LinkTargets ListFilter
	Sources     ListFilter
}
