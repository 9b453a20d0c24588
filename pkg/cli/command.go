// Package cli provides the subcommands (capture, probe, classify) and the
// dual ANSI/plain-text progress UI, adapted from the teacher's
// pkg/cli/command.go Context/ContextBuilder shape.
package cli

import (
	"context"
	"fmt"
	"os"

	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/process"
)

// Command defines an abstract command.
type Command interface {
	Execute(ctx context.Context, cctx *Context, args ...string) error
}

// CommandFunc is the func form of Command.
type CommandFunc func(context.Context, *Context, ...string) error

// Execute implements Command.
func (f CommandFunc) Execute(ctx context.Context, cctx *Context, args ...string) error {
	return f(ctx, cctx, args...)
}

// ProgressEvent reports one work item's processing outcome, the per-item
// analogue of the teacher's per-task DispatcherEvent.
type ProgressEvent struct {
	Index   int
	Total   int
	Binary  string
	Skipped bool
	Err     error
}

// UserInterface defines the abstraction for interacting with the user.
type UserInterface interface {
	PrintProgress(ev ProgressEvent)
	PrintSummary(succeeded, skipped, failed int)
	PrintProbeResult(binary string, origins []string)
	PrintError(err error)
}

// Context provides information about the environment for commands.
type Context struct {
	UI UserInterface
}

// ContextBuilder is used to build a Context, selecting the UI the same way
// the teacher's ContextBuilder.BuildContext picks TermPrinter vs
// TextPrinter from $TERM.
type ContextBuilder struct {
	TextUI bool
}

// BuildContext creates a context.
func (b *ContextBuilder) BuildContext() *Context {
	c := &Context{UI: &TextPrinter{}}
	if !b.TextUI {
		if term := os.Getenv("TERM"); term != "" && term != "dumb" {
			c.UI = &TermPrinter{}
		}
	}
	return c
}

// BuildAndRun builds the context and runs the command.
func (b *ContextBuilder) BuildAndRun(ctx context.Context, cmd Command, args ...string) error {
	cctx := b.BuildContext()
	return cctx.RunCmd(ctx, cmd, args...)
}

// RunCmd runs a command.
func (c *Context) RunCmd(ctx context.Context, cmd Command, args ...string) error {
	if err := cmd.Execute(ctx, c, args...); err != nil {
		c.UI.PrintError(err)
		return err
	}
	return nil
}

// loadEntries is the shared "load the compile database" step used by all
// three subcommands.
func loadEntries(cdbPath string) ([]cdb.Entry, error) {
	if cdbPath == "" {
		return nil, fmt.Errorf("compile database path required (-cdb)")
	}
	return cdb.Load(cdbPath)
}

// parseFilters splits directory/link-target/source filter flag values into
// a process.Filters, one ListFilter per kind, matching the §6 "output
// filters (directory, link-target, whitelist/blacklist source files)"
// surface.
func parseFilters(dirs, linkTargets, sources []string) process.Filters {
	return process.Filters{
		Directories: process.NewListFilter(dirs),
		LinkTargets: process.NewListFilter(linkTargets),
		Sources:     process.NewListFilter(sources),
	}
}
