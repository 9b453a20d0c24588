// Package process implements the work-item processor (C6): re-invokes the
// compiler to preprocess each source, extracts non-system dependencies from
// line markers, text-substitutes and hashes the result, and emits CC/AS/LD
// results for the build processor to stitch (§4.6).
package process

import "xcalbuild/pkg/option"

// CCResult is one compiled translation unit's outcome (§3 "CCResult").
type CCResult struct {
	// Path is the on-disk location of the transformed preprocessed output.
	Path string
	// Digest is the SHA-1 hex digest of the transformed output.
	Digest string
	// Target is the path this TU's output is destined for (possibly
	// synthesized when the command line had no explicit target).
	Target string
	Source string
	Format option.Format
	// OutputName is the display name used for the archive destination
	// (§4.7 "<cc.output-file-name>"): normally the source's stem plus the
	// preprocessed extension, independent of the on-disk temp file name.
	OutputName string

	CScanOptions   []string
	CxxScanOptions []string

	// Deps is the set of non-system header paths this TU depends on,
	// extracted from preprocessor line markers (§4.6 step 3).
	Deps []string
}

// ASResult pairs an assembler target with the source that produced it
// (§3 "ASResult"), used by the build processor to bridge a link input back
// to its originating compile (the "assemble bridge").
type ASResult struct {
	Target string
	Source string
}

// LDResult is one archive/link invocation's target and ordered input list
// (§3 "LDResult"). Input order must be preserved downstream (§5).
type LDResult struct {
	Target string
	Inputs []string
}

// Result accumulates everything one work item emitted.
type Result struct {
	CC []CCResult
	AS []ASResult
	LD []LDResult
}
