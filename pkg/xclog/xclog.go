// Package xclog provides the run-level and per-work-item logging helpers,
// grounded on the teacher's inline log.Logger construction in
// pkg/repos/exec.go's Dispatcher.Run/executeTask.
package xclog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// discardLogger backs ForWorkItem when no base logger is given, so callers
// don't need to nil-check before constructing a per-item logger.
var discardLogger = log.New(io.Discard, "", 0)

// OpenRunLog creates (or truncates) "<outDir>/_xcalbuild.log" and returns a
// logger writing to it, mirroring Dispatcher.Run's single log file per
// invocation.
func OpenRunLog(outDir string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(outDir, 0777); err != nil {
		return nil, nil, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}
	f, err := os.Create(filepath.Join(outDir, "_xcalbuild.log"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating run log: %w", err)
	}
	return log.New(f, "", log.LstdFlags), f, nil
}

// ForWorkItem returns a logger prefixed with the work item's kind, the way
// executeTask prefixes each task's logger with its tool name.
func ForWorkItem(base *log.Logger, kindTag string) *log.Logger {
	if base == nil {
		base = discardLogger
	}
	return log.New(base.Writer(), kindTag+" ", log.LstdFlags)
}
