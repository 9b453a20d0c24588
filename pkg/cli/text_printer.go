package cli

import (
	"fmt"
	"os"
)

// TextPrinter provides an output-only UserInterface in plain text.
type TextPrinter struct {
}

// PrintProgress implements UserInterface.
func (p *TextPrinter) PrintProgress(ev ProgressEvent) {
	percentage := float32(ev.Index+1) * 100 / float32(ev.Total)
	switch {
	case ev.Err != nil:
		fmt.Printf("%5.1f%% FAILED %s: %v\n", percentage, ev.Binary, ev.Err)
	case ev.Skipped:
		fmt.Printf("%5.1f%% SKIPPED %s\n", percentage, ev.Binary)
	default:
		fmt.Printf("%5.1f%% DONE %s\n", percentage, ev.Binary)
	}
}

// PrintSummary implements UserInterface.
func (p *TextPrinter) PrintSummary(succeeded, skipped, failed int) {
	fmt.Printf("CAPTURE END succeeded=%d skipped=%d failed=%d\n", succeeded, skipped, failed)
}

// PrintProbeResult implements UserInterface (probe subcommand).
func (p *TextPrinter) PrintProbeResult(binary string, origins []string) {
	fmt.Printf("%s %v\n", binary, origins)
}

// PrintError implements UserInterface.
func (p *TextPrinter) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v.\n", err)
}
