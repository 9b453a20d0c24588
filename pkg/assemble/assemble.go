package assemble

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xcalbuild/pkg/archive"
	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/checksum"
	"xcalbuild/pkg/classify"
	"xcalbuild/pkg/dispatch"
	"xcalbuild/pkg/process"
	"xcalbuild/pkg/profile"
	"xcalbuild/pkg/prober"
	"xcalbuild/pkg/xclog"
)

// Options configures one end-to-end capture run (§4.7 "Drive").
type Options struct {
	CDBPath   string
	OutputDir string

	// ToolchainPath names a toolchain profile directly. When empty,
	// AutoDetectCandidates is consulted instead.
	ToolchainPath string
	// AutoDetectCandidates lists toolchain profile paths to vote over when
	// ToolchainPath is empty (CLI "*-auto" toolchain selection).
	AutoDetectCandidates []string

	Parallelism     int
	Filters         process.Filters
	LinkViaCompiler bool
	NoCache         bool

	Logger *log.Logger
	Warn   profile.Warnf

	// Progress, when set, is called once per compile-database entry as
	// soon as that entry's processing completes (order not guaranteed,
	// since entries are dispatched across a worker pool). Used by the
	// capture subcommand to report live per-work-item progress.
	Progress func(entry cdb.Entry, err error)
}

// Run drives the full capture pipeline: load the compile database, resolve
// the toolchain (directly or by auto-detection), probe, dispatch C6 across
// every entry, stitch the results, and write the archive.
func Run(ctx context.Context, opts Options) error {
	warn := opts.Warn
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}

	entries, err := cdb.Load(opts.CDBPath)
	if err != nil {
		return err
	}

	tc, err := resolveToolchain(opts, entries)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.OutputDir, 0777); err != nil {
		return fmt.Errorf("creating output directory %s: %w", opts.OutputDir, err)
	}

	if err := prober.Probe(tc, entries, opts.OutputDir, warn); err != nil {
		return err
	}
	tc.LoadActionable()

	profileContent, _ := os.ReadFile(tc.Path)
	for _, tool := range tc.Tools {
		data, _ := os.ReadFile(tool.Profile.Path)
		profileContent = append(profileContent, data...)
	}
	toolchainDigest, err := hashBytes(profileContent)
	if err != nil {
		return err
	}

	hasher := checksum.SHA1Hasher{}
	processOpts := process.Options{
		OutputDir:       opts.OutputDir,
		Filters:         opts.Filters,
		Hasher:          hasher,
		ToolchainDigest: toolchainDigest,
		NoCache:         opts.NoCache,
	}

	work := func(ctx context.Context, entry cdb.Entry) (res *process.Result, err error) {
		defer func() {
			if opts.Progress != nil {
				opts.Progress(entry, err)
			}
		}()
		if len(entry.Arguments) == 0 {
			return &process.Result{}, nil
		}
		tool, ok := tc.Lookup(entry.Arguments[0])
		if !ok {
			return &process.Result{}, nil
		}
		item, classifyErr := classify.Classify(tc, entry, warn)
		if classifyErr != nil || item == nil {
			return &process.Result{}, classifyErr
		}
		itemOpts := processOpts
		itemOpts.Logger = xclog.ForWorkItem(opts.Logger, item.Kind.String())
		return process.Process(tool.Profile, item, itemOpts, warn)
	}

	result, failures := dispatch.Run(ctx, entries, opts.Parallelism, work, opts.Logger)
	for _, f := range failures {
		warn("entry %d (%s): %v", f.Index, strings.Join(f.Entry.Arguments, " "), f.Err)
	}

	return stitchAndArchive(opts, result)
}

// resolveToolchain loads the toolchain profile named directly by
// opts.ToolchainPath, or runs the origin-vote auto-detection across
// opts.AutoDetectCandidates when no explicit path is given (§4.7).
func resolveToolchain(opts Options, entries []cdb.Entry) (*profile.ToolchainProfile, error) {
	if opts.ToolchainPath != "" {
		return profile.LoadToolchain(opts.ToolchainPath)
	}
	if len(opts.AutoDetectCandidates) == 0 {
		return nil, fmt.Errorf("no toolchain profile specified and no auto-detect candidates given")
	}

	paths := append([]string(nil), opts.AutoDetectCandidates...)
	sort.Strings(paths)

	var candidates []*profile.ToolchainProfile
	for _, path := range paths {
		tc, err := profile.LoadToolchain(path)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, tc)
	}

	origin, err := profile.DetectToolchain(entries, candidates)
	if err != nil {
		return nil, err
	}
	for _, tc := range candidates {
		for _, tool := range tc.Tools {
			for _, o := range tool.Origins() {
				if o == origin {
					return tc, nil
				}
			}
		}
	}
	return nil, profile.ErrNoToolchainMatch
}

func stitchAndArchive(opts Options, result *process.Result) error {
	asTargetToSource := buildAsTargetToSource(result.AS)
	ldInfos, dependencyNames := buildLDInfos(result.LD, asTargetToSource)
	linkTargets := buildLinkTargets(ldInfos)

	archivePath := filepath.Join(opts.OutputDir, preprocessDirName+".tar.gz")
	ar, err := archive.Create(archivePath)
	if err != nil {
		return err
	}

	popResult, err := populate(result.CC, linkTargets, ar, populateOptions{
		LinkViaCompiler: opts.LinkViaCompiler,
		Warn:            opts.Warn,
	})
	if err != nil {
		ar.Close()
		return err
	}
	if popResult.TestLD != nil {
		ldInfos = append(ldInfos, popResult.TestLD)
		dependencyNames[popResult.TestLD.Target] = popResult.TestLD.ShortName
	}

	checksumLines := popResult.ChecksumLines
	for _, info := range ldInfos {
		body := renderProperties(info, dependencyNames)
		propPath := info.ShortName + ".dir/xcalibyte.properties"
		if err := ar.AddDir(info.ShortName + ".dir/"); err != nil {
			ar.Close()
			return err
		}
		if err := ar.AddFile(propPath, body); err != nil {
			ar.Close()
			return err
		}
		digest, err := hashBytes(body)
		if err != nil {
			ar.Close()
			return err
		}
		checksumLines = append(checksumLines, fmt.Sprintf("%s %s", digest, propPath))
	}

	if err := ar.AddDir(preprocessDirName + "/"); err != nil {
		ar.Close()
		return err
	}
	if err := ar.AddFile(preprocessDirName+"/xcalibyte.properties", nil); err != nil {
		ar.Close()
		return err
	}
	checksumBody := []byte(strings.Join(checksumLines, "\n") + "\n")
	if err := ar.AddFile(preprocessDirName+"/checksum.sha1", checksumBody); err != nil {
		ar.Close()
		return err
	}

	if err := ar.Close(); err != nil {
		return err
	}

	return writeSourceFiles(opts.OutputDir, popResult.SourceFiles)
}

func hashBytes(data []byte) (string, error) {
	return checksum.SumBytes(checksum.SHA1Hasher{}, data)
}

func writeSourceFiles(outputDir string, sourceFiles map[string]bool) error {
	names := make([]string, 0, len(sourceFiles))
	for name := range sourceFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, "source_files.json"), data, 0644)
}
