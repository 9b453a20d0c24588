package process

import (
	"path/filepath"
	"regexp"
	"strings"
)

// lineMarkerRE matches a preprocessor line marker: # <n> "<path>" <flags...>
var lineMarkerRE = regexp.MustCompile(`^#\s*\d+\s+"([^"]*)"(.*)$`)

// ParseLineMarkerDeps scans preprocessed text for line markers whose last
// flag token is exactly "1" (the common "new file" directive) and whose
// path does not start with "<", resolving each against dir (§4.6 step 3).
// Per §9's documented ambiguity, a marker carrying flag 1 among later flags
// (e.g. "# n \"x\" 1 2") is not recognized — only a literal trailing "1" is.
func ParseLineMarkerDeps(text, dir string) []string {
	seen := map[string]bool{}
	var deps []string
	for _, line := range strings.Split(text, "\n") {
		m := lineMarkerRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		path := m[1]
		if strings.HasPrefix(path, "<") {
			continue
		}
		flags := strings.Fields(m[2])
		if len(flags) == 0 || flags[len(flags)-1] != "1" {
			continue
		}
		resolved := path
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(dir, resolved)
		}
		if !seen[resolved] {
			seen[resolved] = true
			deps = append(deps, resolved)
		}
	}
	return deps
}
