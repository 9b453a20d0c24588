package cli

import (
	"context"
	"flag"
	"sort"

	"xcalbuild/pkg/prober"
	"xcalbuild/pkg/profile"
	"xcalbuild/pkg/xclog"
)

// ProbeCmd runs the toolchain prober (C5) alone, without classifying or
// processing any work item, and prints the declared origin tags of every
// tool the compile database references — a debugging aid for profile
// authors (§4.5). The macro values the prober matched are not printed.
type ProbeCmd struct {
	CDBPath       string
	OutputDir     string
	ToolchainPath string
	Debug         bool
}

// SetFlags binds the command's flags.
func (c *ProbeCmd) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.CDBPath, "cdb", "", "Compile database path.")
	fs.StringVar(&c.OutputDir, "outputdir", "out", "Output directory (scratch space for probe sources).")
	fs.StringVar(&c.ToolchainPath, "profile", "", "Toolchain profile path.")
	fs.BoolVar(&c.Debug, "debug", false, "Print prober warnings.")
}

// Execute implements Command.
func (c *ProbeCmd) Execute(ctx context.Context, cctx *Context, args ...string) error {
	entries, err := loadEntries(c.CDBPath)
	if err != nil {
		return err
	}
	tc, err := profile.LoadToolchain(c.ToolchainPath)
	if err != nil {
		return err
	}

	logger, closer, err := xclog.OpenRunLog(c.OutputDir)
	if err != nil {
		return err
	}
	defer closer.Close()
	warn := func(format string, args ...interface{}) {
		if c.Debug {
			logger.Printf(format, args...)
		}
	}

	if err := prober.Probe(tc, entries, c.OutputDir, warn); err != nil {
		return err
	}
	tc.LoadActionable()

	var binaries []string
	seen := map[string]bool{}
	for _, e := range entries {
		if len(e.Arguments) == 0 {
			continue
		}
		if seen[e.Arguments[0]] {
			continue
		}
		if _, ok := tc.Lookup(e.Arguments[0]); ok {
			seen[e.Arguments[0]] = true
			binaries = append(binaries, e.Arguments[0])
		}
	}
	sort.Strings(binaries)

	for _, binary := range binaries {
		tool, _ := tc.Lookup(binary)
		cctx.UI.PrintProbeResult(binary, tool.Origins())
	}
	return nil
}
