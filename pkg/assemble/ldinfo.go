// Package assemble implements the build processor / output assembler (C7):
// drives the classifier, prober, and work-item processor over a compile
// database, stitches their CC/AS/LD results into one archive tree, and
// writes the result as a gzipped TAR (§4.7).
package assemble

import (
	"fmt"
	"path/filepath"
	"sort"

	"xcalbuild/pkg/process"
)

// pseudoLinkTargetName is the hard-coded "link via compiler" pseudo-target
// (§9 open question: "the source marks this as provisional; treat as a
// named constant").
const pseudoLinkTargetName = "test_ld"

// preprocessDirName is the fixed top-level archive folder name that also
// nests under each LDInfo's short-name directory (§6, scenario 2:
// "exe.dir/preprocess/a.c.i").
const preprocessDirName = "preprocess"

// LDInfo is one link target's assembled state: its archive short name, the
// dependency set remaining to resolve, and the first-wins scan-options.
type LDInfo struct {
	Target    string
	ShortName string

	dependencies map[string]bool
	archiveStems map[string]bool

	CScanOptions   []string
	CxxScanOptions []string
	cScanSet       bool
	cxxScanSet     bool
}

// buildLDInfos groups LDResults by target (merging inputs for repeated
// targets), assigns each a deterministic short name, and returns the
// original-target → short-name map used later to resolve leftover
// dependencies that are themselves other link targets (§4.7
// "dependency_names"). Every input is rewritten through asTargetToSource
// (the assemble bridge) before being recorded, so a later CCResult's target
// can remove it by direct equality (§4.7 "Remove cc.target from the
// LDInfo's dependencies set").
func buildLDInfos(ldResults []process.LDResult, asTargetToSource map[string]string) ([]*LDInfo, map[string]string) {
	byTarget := map[string]*LDInfo{}
	var targets []string
	for _, ld := range ldResults {
		info, ok := byTarget[ld.Target]
		if !ok {
			info = &LDInfo{
				Target:       ld.Target,
				dependencies: map[string]bool{},
				archiveStems: map[string]bool{},
			}
			byTarget[ld.Target] = info
			targets = append(targets, ld.Target)
		}
		for _, in := range ld.Inputs {
			rewritten := in
			if src, ok := asTargetToSource[in]; ok {
				rewritten = src
			}
			info.dependencies[rewritten] = true
		}
	}

	// Deterministic total order (§9: "a deterministic total order, e.g.
	// lexicographic on original absolute target path, is recommended").
	sort.Strings(targets)

	seenBase := map[string]int{}
	dependencyNames := map[string]string{}
	var infos []*LDInfo
	for _, target := range targets {
		info := byTarget[target]
		base := filepath.Base(target)
		n := seenBase[base]
		seenBase[base] = n + 1
		if n == 0 {
			info.ShortName = base
		} else {
			info.ShortName = fmt.Sprintf("%s.%d", base, n)
		}
		dependencyNames[target] = info.ShortName
		infos = append(infos, info)
	}
	return infos, dependencyNames
}

// uniqueArchiveName disambiguates destName within one LDInfo's archive
// subtree, suffixing the stem with .1, .2, … until unique (§4.7 "If this
// path is already used within the archive, suffix the stem with .1, .2, …
// until unique").
func (info *LDInfo) uniqueArchiveName(destName string) string {
	if !info.archiveStems[destName] {
		info.archiveStems[destName] = true
		return destName
	}
	ext := filepath.Ext(destName)
	stem := destName[:len(destName)-len(ext)]
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%d%s", stem, n, ext)
		if !info.archiveStems[candidate] {
			info.archiveStems[candidate] = true
			return candidate
		}
	}
}

// setScanOptions applies the first-wins discipline: the first CCResult to
// carry non-nil scan options for a language sets that LDInfo's list;
// subsequent ones do not overwrite (§4.7 "first CCResult wins").
func (info *LDInfo) setScanOptions(cc process.CCResult) {
	if !info.cScanSet && cc.CScanOptions != nil {
		info.CScanOptions = cc.CScanOptions
		info.cScanSet = true
	}
	if !info.cxxScanSet && cc.CxxScanOptions != nil {
		info.CxxScanOptions = cc.CxxScanOptions
		info.cxxScanSet = true
	}
}

// resolvedDependencies returns info's remaining dependency set (after
// consumed compile targets have been removed) as a sorted list, each entry
// resolved to a short name when it is itself another link target.
func (info *LDInfo) resolvedDependencies(dependencyNames map[string]string) []string {
	var deps []string
	for dep := range info.dependencies {
		if name, ok := dependencyNames[dep]; ok {
			deps = append(deps, name)
		} else {
			deps = append(deps, dep)
		}
	}
	sort.Strings(deps)
	return deps
}
