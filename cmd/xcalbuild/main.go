package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"xcalbuild/pkg/cli"
)

const (
	captureSynopsis = `Capture a build's preprocessed translation units`
	captureUsage    = `capture -cdb=FILE -outputdir=DIR (-profile=FILE | -profile-search=DIR)
Drive the whole pipeline: load the compile database, resolve a toolchain
profile, probe it, classify and process every entry, and write the
resulting archive to -outputdir.
`
	probeSynopsis = `Probe a toolchain and print recognized tools' origins`
	probeUsage    = `probe -cdb=FILE -profile=FILE
Run the toolchain prober alone and print the origin tags of every tool it
recognized, without classifying or processing any work item.
`
	classifySynopsis = `Classify a compile database and print work items`
	classifyUsage    = `classify -cdb=FILE -profile=FILE
Run the work-item classifier alone over a compile database and print each
resulting Parsed Work Item as JSON, without invoking any compiler.
`
)

var contextBuilder cli.ContextBuilder

type flagBinder interface {
	SetFlags(*flag.FlagSet)
}

type cmdWrapper struct {
	name     string
	synopsis string
	usage    string
	command  cli.Command
}

func (w *cmdWrapper) Name() string     { return w.name }
func (w *cmdWrapper) Synopsis() string { return w.synopsis }
func (w *cmdWrapper) Usage() string    { return w.usage }
func (w *cmdWrapper) SetFlags(fs *flag.FlagSet) {
	if b, ok := w.command.(flagBinder); ok {
		b.SetFlags(fs)
	}
}
func (w *cmdWrapper) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return runCmd(ctx, w.command, f.Args()...)
}

func wrapCmd(cmd cli.Command, name, synopsis, usage string) *cmdWrapper {
	return &cmdWrapper{name: name, synopsis: synopsis, usage: usage, command: cmd}
}

func runCmd(ctx context.Context, cmd cli.Command, args ...string) subcommands.ExitStatus {
	if err := contextBuilder.BuildAndRun(ctx, cmd, args...); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func registerCmd(cmd subcommands.Command, aliases ...string) {
	subcommands.Register(cmd, "")
	for _, alias := range aliases {
		subcommands.Register(subcommands.Alias(alias, cmd), "")
	}
}

func init() {
	flag.BoolVar(&contextBuilder.TextUI, "no-color", contextBuilder.TextUI, "Disable color terminal support.")

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	registerCmd(wrapCmd(&cli.CaptureCmd{}, "capture", captureSynopsis, captureUsage), "c")
	registerCmd(wrapCmd(&cli.ProbeCmd{}, "probe", probeSynopsis, probeUsage))
	registerCmd(wrapCmd(&cli.ClassifyCmd{}, "classify", classifySynopsis, classifyUsage))
}

func main() {
	flag.Parse()
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		<-sigCh
		os.Exit(1)
	}()
	os.Exit(int(subcommands.Execute(ctx)))
}
