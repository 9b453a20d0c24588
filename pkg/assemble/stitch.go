package assemble

import (
	"fmt"
	"os"
	"sort"

	"xcalbuild/pkg/archive"
	"xcalbuild/pkg/process"
	"xcalbuild/pkg/profile"
)

// buildAsTargetToSource maps an assembler target (".o") to the source
// (".s") that produced it, so link inputs can be rewritten to the upstream
// compile target before lookup in linkTargets (§4.7 "assemble bridge").
func buildAsTargetToSource(asResults []process.ASResult) map[string]string {
	m := map[string]string{}
	for _, as := range asResults {
		m[as.Target] = as.Source
	}
	return m
}

// buildLinkTargets maps every LD input (already rewritten through the
// assemble bridge by buildLDInfos) to the LDInfo records that consume it.
func buildLinkTargets(ldInfos []*LDInfo) map[string][]*LDInfo {
	m := map[string][]*LDInfo{}
	for _, info := range ldInfos {
		for dep := range info.dependencies {
			m[dep] = append(m[dep], info)
		}
	}
	return m
}

// populateOptions configures the population pass.
type populateOptions struct {
	LinkViaCompiler bool
	Warn            profile.Warnf
}

// populateResult is everything one pass over the CCResults produced.
type populateResult struct {
	ChecksumLines []string
	SourceFiles   map[string]bool
	// TestLD is the synthetic "link via compiler" LDInfo created on demand,
	// nil unless at least one otherwise-unconsumed CCResult was rerouted to
	// it.
	TestLD *LDInfo
}

// populate walks every CCResult, copies its preprocessed output into the
// archive under every LDInfo that consumes its target, appends checksum
// lines, resolves scan-options and dependency sets, and deletes the
// CCResult's temporary once it has been fully consumed (§4.7 "Populate
// per-LDInfo").
func populate(ccResults []process.CCResult, linkTargets map[string][]*LDInfo, ar archive.Archiver, opts populateOptions) (*populateResult, error) {
	warn := opts.Warn
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}

	result := &populateResult{SourceFiles: map[string]bool{}}

	sorted := make([]process.CCResult, len(ccResults))
	copy(sorted, ccResults)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })

	for _, cc := range sorted {
		consumers := linkTargets[cc.Target]
		if len(consumers) == 0 {
			if !opts.LinkViaCompiler {
				warn("dropping CCResult for %q: no consuming link target", cc.Target)
				os.Remove(cc.Path)
				continue
			}
			if result.TestLD == nil {
				result.TestLD = &LDInfo{
					Target:       pseudoLinkTargetName,
					ShortName:    pseudoLinkTargetName,
					dependencies: map[string]bool{},
					archiveStems: map[string]bool{},
				}
			}
			consumers = []*LDInfo{result.TestLD}
			linkTargets[cc.Target] = consumers
		}

		data, err := os.ReadFile(cc.Path)
		if err != nil {
			warn("reading preprocessed output %q: %v", cc.Path, err)
			continue
		}

		for _, info := range consumers {
			destName := info.uniqueArchiveName(cc.OutputName)
			dirPath := info.ShortName + ".dir/" + preprocessDirName
			filePath := dirPath + "/" + destName
			if err := ar.AddDir(info.ShortName + ".dir/"); err != nil {
				return nil, err
			}
			if err := ar.AddDir(dirPath + "/"); err != nil {
				return nil, err
			}
			if err := ar.AddFile(filePath, data); err != nil {
				return nil, err
			}
			result.ChecksumLines = append(result.ChecksumLines, fmt.Sprintf("%s %s", cc.Digest, filePath))
			delete(info.dependencies, cc.Target)
			info.setScanOptions(cc)
		}

		result.SourceFiles[cc.Source] = true
		for _, dep := range cc.Deps {
			result.SourceFiles[dep] = true
		}
		os.Remove(cc.Path)
	}

	return result, nil
}
