package cli

import (
	"fmt"
	"os"
)

// TermPrinter provides an output-only UserInterface for ANSI terminal.
type TermPrinter struct {
}

// PrintProgress implements UserInterface.
func (p *TermPrinter) PrintProgress(ev ProgressEvent) {
	percentage := float32(ev.Index+1) * 100 / float32(ev.Total)
	switch {
	case ev.Err != nil:
		fmt.Printf("\x1b[31;1m%5.1f%%\x1b[m \x1b[31;1m:(\x1b[m \x1b[37m%s\x1b[m \x1b[31m%v\x1b[m\n", percentage, ev.Binary, ev.Err)
	case ev.Skipped:
		fmt.Printf("\x1b[36;1m%5.1f%%\x1b[m \x1b[36;1m:]\x1b[m \x1b[37m%s\x1b[m\n", percentage, ev.Binary)
	default:
		fmt.Printf("\x1b[32;1m%5.1f%%\x1b[m \x1b[32;1m:)\x1b[m \x1b[37m%s\x1b[m\n", percentage, ev.Binary)
	}
}

// PrintSummary implements UserInterface.
func (p *TermPrinter) PrintSummary(succeeded, skipped, failed int) {
	fmt.Printf("\x1b[32mOK\x1b[m \x1b[32;1m%d\x1b[m", succeeded)
	if skipped != 0 {
		fmt.Printf(" \x1b[36mSkipped\x1b[m \x1b[36;1m%d\x1b[m", skipped)
	}
	if failed != 0 {
		fmt.Printf(" \x1b[31mFailed\x1b[m \x1b[31;1m%d\x1b[m", failed)
	}
	fmt.Println()
}

// PrintProbeResult implements UserInterface (probe subcommand).
func (p *TermPrinter) PrintProbeResult(binary string, origins []string) {
	fmt.Printf("\x1b[36;1m%s\x1b[m \x1b[37m%v\x1b[m\n", binary, origins)
}

// PrintError implements UserInterface.
func (p *TermPrinter) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "\x1b[31;1mError:\x1b[m \x1b[31m%v.\x1b[m\n", err)
}
