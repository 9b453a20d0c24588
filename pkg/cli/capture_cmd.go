package cli

import (
	"context"
	"flag"
	"fmt"
	"sync"

	"xcalbuild/pkg/assemble"
	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/profile"
	"xcalbuild/pkg/xclog"
)

// CaptureCmd drives the whole pipeline (C2–C7): load the compile database,
// resolve a toolchain, probe, classify and process every entry, then stitch
// and archive the results, reporting per-work-item progress.
type CaptureCmd struct {
	CDBPath         string
	OutputDir       string
	ToolchainPath   string
	ToolchainSearch string
	Parallelism     int
	DirFilter       flagList
	LinkFilter      flagList
	SourceFilter    flagList
	LinkViaCompiler bool
	NoCache         bool
	Debug           bool
}

// SetFlags binds the command's flags, matching the teacher's direct
// flag.FlagSet usage (no INI, per SPEC_FULL.md's AMBIENT STACK CLI note).
func (c *CaptureCmd) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.CDBPath, "cdb", "", "Compile database path.")
	fs.StringVar(&c.OutputDir, "outputdir", "out", "Output directory.")
	fs.StringVar(&c.ToolchainPath, "profile", "", "Toolchain profile path. When empty, auto-detected from -profile-search.")
	fs.StringVar(&c.ToolchainSearch, "profile-search", "", "Directory to search for *.toolchain.json profiles when -profile is empty.")
	fs.IntVar(&c.Parallelism, "j", 0, "Number of parallel workers (0 = NumCPU).")
	fs.Var(&c.DirFilter, "filter-dir", "Directory-name output filter (gitignore pattern, repeatable, leading + on the first switches to whitelist).")
	fs.Var(&c.LinkFilter, "filter-link", "Link-target output filter (gitignore pattern, repeatable).")
	fs.Var(&c.SourceFilter, "filter-source", "Source-file output filter (gitignore pattern, repeatable).")
	fs.BoolVar(&c.LinkViaCompiler, "link-via-compiler", false, "Route otherwise-unconsumed compile outputs through the test_ld pseudo target.")
	fs.BoolVar(&c.NoCache, "no-cache", false, "Disable the incremental capture cache and force a cold run.")
	fs.BoolVar(&c.Debug, "debug", false, "Enable verbose logging.")
}

// Execute implements Command.
func (c *CaptureCmd) Execute(ctx context.Context, cctx *Context, args ...string) error {
	entries, err := loadEntries(c.CDBPath)
	if err != nil {
		return err
	}
	total := len(entries)

	logger, closer, err := xclog.OpenRunLog(c.OutputDir)
	if err != nil {
		return err
	}
	defer closer.Close()

	var candidates []string
	if c.ToolchainPath == "" {
		if c.ToolchainSearch == "" {
			return fmt.Errorf("either -profile or -profile-search must be given")
		}
		candidates, err = profile.Discover(c.ToolchainSearch)
		if err != nil {
			return err
		}
	}

	warn := func(format string, args ...interface{}) {
		if c.Debug {
			logger.Printf(format, args...)
		}
	}

	var mu sync.Mutex
	index := 0
	succeeded, skipped, failed := 0, 0, 0
	progress := func(entry cdb.Entry, err error) {
		mu.Lock()
		defer mu.Unlock()
		binary := ""
		if len(entry.Arguments) > 0 {
			binary = entry.Arguments[0]
		}
		skippedEntry := err == nil && len(entry.Arguments) == 0
		switch {
		case err != nil:
			failed++
		case skippedEntry:
			skipped++
		default:
			succeeded++
		}
		cctx.UI.PrintProgress(ProgressEvent{Index: index, Total: total, Binary: binary, Skipped: skippedEntry, Err: err})
		index++
	}

	opts := assemble.Options{
		CDBPath:              c.CDBPath,
		OutputDir:            c.OutputDir,
		ToolchainPath:        c.ToolchainPath,
		AutoDetectCandidates: candidates,
		Parallelism:          c.Parallelism,
		Filters:              parseFilters(c.DirFilter, c.LinkFilter, c.SourceFilter),
		LinkViaCompiler:      c.LinkViaCompiler,
		NoCache:              c.NoCache,
		Logger:               logger,
		Warn:                 warn,
		Progress:             progress,
	}

	if err := assemble.Run(ctx, opts); err != nil {
		cctx.UI.PrintSummary(succeeded, skipped, failed)
		return err
	}
	cctx.UI.PrintSummary(succeeded, skipped, failed)
	return nil
}

// flagList is a repeatable string flag, matching the teacher's lack of a
// string-slice flag type (flag.Value implemented by hand).
type flagList []string

func (l *flagList) String() string {
	return fmt.Sprint([]string(*l))
}

func (l *flagList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
