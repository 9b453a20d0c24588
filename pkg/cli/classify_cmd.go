package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"xcalbuild/pkg/classify"
	"xcalbuild/pkg/profile"
	"xcalbuild/pkg/xclog"
)

// ClassifyCmd runs the work-item classifier (C4) alone over a compile
// database and prints every resulting Parsed Work Item, without invoking
// any compiler — a debugging aid for profile authors (§4.4).
type ClassifyCmd struct {
	CDBPath       string
	OutputDir     string
	ToolchainPath string
	Debug         bool
}

// SetFlags binds the command's flags.
func (c *ClassifyCmd) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.CDBPath, "cdb", "", "Compile database path.")
	fs.StringVar(&c.OutputDir, "outputdir", "out", "Output directory (for the run log).")
	fs.StringVar(&c.ToolchainPath, "profile", "", "Toolchain profile path.")
	fs.BoolVar(&c.Debug, "debug", false, "Print classifier warnings.")
}

// Execute implements Command.
func (c *ClassifyCmd) Execute(ctx context.Context, cctx *Context, args ...string) error {
	entries, err := loadEntries(c.CDBPath)
	if err != nil {
		return err
	}
	tc, err := profile.LoadToolchain(c.ToolchainPath)
	if err != nil {
		return err
	}
	tc.LoadActionable()

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

	for _, entry := range entries {
		item, err := classify.Classify(tc, entry, warn)
		if err != nil {
			cctx.UI.PrintError(err)
			continue
		}
		if item == nil {
			continue
		}
		body, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			cctx.UI.PrintError(err)
			continue
		}
		fmt.Println(string(body))
	}
	return nil
}
