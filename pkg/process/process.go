package process

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"xcalbuild/pkg/checksum"
	"xcalbuild/pkg/option"
	"xcalbuild/pkg/profile"
)

// Options configures one work-item processing pass: the output directory
// beneath which temporaries and synthesized targets live, the filters the
// enclosing build processor carries (§4.6 "Filtering"), and the hasher the
// processor delegates digesting to.
type Options struct {
	OutputDir string
	Filters   Filters
	Hasher    checksum.Hasher

	// ToolchainDigest identifies the tool profile content currently in
	// effect, so a profile change invalidates every source's cache entry.
	ToolchainDigest string
	// NoCache disables the incremental cache lookup/store, forcing every
	// source to be re-preprocessed.
	NoCache bool

	// Logger receives this work item's own activity (preprocess
	// invocations, cache hits), already prefixed with the item's kind by
	// the caller, mirroring executeTask's xctx.Logger. May be nil.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

// Process routes one parsed work item to its kind-specific handling (§4.6),
// consulting filters first and returning the CC/AS/LD results it produced.
// warn reports non-fatal conditions; it may be nil.
func Process(p *profile.Profile, item *profile.WorkItem, opts Options, warn profile.Warnf) (*Result, error) {
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	if !opts.Filters.Directories.Permits(item.Dir) {
		return &Result{}, nil
	}
	opts.logger().Printf("processing %s", item.Dir)

	switch item.Kind {
	case option.Ignore:
		return &Result{}, nil
	case option.Compile:
		return processCompile(p, item, opts, warn)
	case option.Assemble:
		return processAssemble(item, opts), nil
	case option.Link, option.Archive:
		return processLink(item, opts, warn), nil
	default:
		return &Result{}, nil
	}
}

func processCompile(p *profile.Profile, item *profile.WorkItem, opts Options, warn profile.Warnf) (*Result, error) {
	if len(item.Sources) == 0 {
		return &Result{}, nil
	}
	for _, src := range item.Sources {
		if !opts.Filters.Sources.Permits(src.Path) {
			return &Result{}, nil
		}
	}

	target := item.Target
	if target == "" {
		target = synthesizeTarget(item.Sources)
	}
	targetIsDir := isDirTarget(target)

	var res Result
	for _, src := range item.Sources {
		cc, err := compileOne(p, item, src, target, targetIsDir, opts, warn)
		if err != nil {
			warn("dropping %q: %v", src.Path, err)
			continue
		}
		res.CC = append(res.CC, *cc)
	}

	if len(item.Sources) > 1 && !targetIsDir && len(res.CC) > 0 {
		inputs := make([]string, len(res.CC))
		for i, cc := range res.CC {
			inputs[i] = cc.Target
		}
		res.LD = append(res.LD, LDResult{Target: target, Inputs: inputs})
	}
	return &res, nil
}

func compileOne(p *profile.Profile, item *profile.WorkItem, src profile.SourceRef, target string, targetIsDir bool, opts Options, warn profile.Warnf) (*CCResult, error) {
	isC := src.Format == option.FormatC || (src.Format == option.FormatByExtension && item.Format == option.FormatC)
	ext := ".ii"
	if isC {
		ext = ".i"
	}

	cScan, cxxScan := item.CScanOptions, item.CxxScanOptions
	if isC {
		cxxScan = nil
	} else {
		cScan = nil
	}

	args := profile.EmitPreprocessingOptions(p, item, src, "")
	optionsKey := OptionsKey(args, opts.ToolchainDigest)

	var cache *Cache
	if !opts.NoCache {
		cache = NewCache(opts.OutputDir, src.Path)
		if err := cache.Load(); err != nil {
			warn("cache load for %q: %v", src.Path, err)
		} else if hit, ok := cache.Hit(src.Path, optionsKey); ok {
			opts.logger().Printf("cache hit for %s", src.Path)
			cached := *hit
			cached.Target, cached.OutputName = resolveTargetAndName(item, src, target, targetIsDir)
			return &cached, nil
		}
	}

	tmp, err := os.CreateTemp(opts.OutputDir, "xc-pp-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("creating temp output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	cmdArgs := append(profile.EmitPreprocessingOptions(p, item, src, tmpPath), src.Path)
	cmd := exec.Command(item.Binary, cmdArgs...)
	cmd.Dir = item.Dir
	opts.logger().Printf("preprocessing %s", src.Path)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("preprocess failed: %w (%s)", err, out)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("reading preprocessed output: %w", err)
	}

	deps := ParseLineMarkerDeps(string(data), item.Dir)

	text, err := profile.Substitute(p, string(data))
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("substitution: %w", err)
	}
	if err := os.WriteFile(tmpPath, []byte(text), 0644); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("writing transformed output: %w", err)
	}

	digest, err := checksum.SumBytes(opts.Hasher, []byte(text))
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("hashing: %w", err)
	}

	ccTarget, outputName := resolveTargetAndName(item, src, target, targetIsDir)
	result := CCResult{
		Path:           tmpPath,
		Digest:         digest,
		Target:         ccTarget,
		Source:         src.Path,
		Format:         src.Format,
		OutputName:     outputName,
		CScanOptions:   cScan,
		CxxScanOptions: cxxScan,
		Deps:           deps,
	}

	if cache != nil {
		if err := cache.Store(src.Path, optionsKey, result); err != nil {
			warn("cache store for %q: %v", src.Path, err)
		}
	}
	return &result, nil
}

// resolveTargetAndName determines a source's per-compile target path and its
// display output name (§4.6 step 5), independent of whether the result came
// from a fresh compile or a cache hit.
func resolveTargetAndName(item *profile.WorkItem, src profile.SourceRef, target string, targetIsDir bool) (ccTarget, outputName string) {
	stem := strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
	isC := src.Format == option.FormatC || (src.Format == option.FormatByExtension && item.Format == option.FormatC)
	ext := ".ii"
	if isC {
		ext = ".i"
	}
	ccTarget = target
	switch {
	case len(item.Sources) > 1 && !targetIsDir:
		ccTarget = synthesizeTarget([]profile.SourceRef{src})
	case targetIsDir:
		ccTarget = filepath.Join(target, stem+".o")
	}
	return ccTarget, stem + ext
}

func processAssemble(item *profile.WorkItem, opts Options) *Result {
	if len(item.Sources) == 0 || !opts.Filters.Sources.Permits(item.Sources[0].Path) {
		return &Result{}
	}
	return &Result{AS: []ASResult{{Target: item.Target, Source: item.Sources[0].Path}}}
}

const defaultLinkOutput = "DEFAULT_OUTPUT"

func processLink(item *profile.WorkItem, opts Options, warn profile.Warnf) *Result {
	target := item.Target
	if target == "" {
		if item.Kind == option.Archive {
			warn("dropping archive work item with empty target")
			return &Result{}
		}
		target = defaultLinkOutput
	}
	if !opts.Filters.LinkTargets.Permits(filepath.Base(target)) {
		return &Result{}
	}
	var inputs []string
	for _, src := range item.Sources {
		inputs = append(inputs, src.Path)
	}
	return &Result{LD: []LDResult{{Target: target, Inputs: inputs}}}
}

// synthesizeTarget deterministically derives a target path from a SHA-1
// digest of the sorted source paths, used when a compile command line has
// no explicit output target (§4.6 "If target is unset, synthesize one").
func synthesizeTarget(sources []profile.SourceRef) string {
	paths := make([]string, len(sources))
	for i, s := range sources {
		paths[i] = s.Path
	}
	sort.Strings(paths)
	h := sha1.New()
	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)) + ".o"
}

// isDirTarget reports whether target names an existing directory, falling
// back to a trailing-separator heuristic when it doesn't exist yet.
func isDirTarget(target string) bool {
	if info, err := os.Stat(target); err == nil {
		return info.IsDir()
	}
	return strings.HasSuffix(target, string(filepath.Separator))
}
