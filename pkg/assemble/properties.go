package assemble

import (
	"fmt"
	"strings"
)

// renderProperties renders one LDInfo's properties document: an INI-like
// section seeding the dependency and scan-option keys as space-joined
// values (§4.7 "Emit per-LDInfo property file").
func renderProperties(info *LDInfo, dependencyNames map[string]string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "[PROPERTY_KEY]\n")
	fmt.Fprintf(&b, "dependencies = %s\n", strings.Join(info.resolvedDependencies(dependencyNames), " "))
	fmt.Fprintf(&b, "c_scan_options = %s\n", strings.Join(info.CScanOptions, " "))
	fmt.Fprintf(&b, "cxx_scan_options = %s\n", strings.Join(info.CxxScanOptions, " "))
	return []byte(b.String())
}
