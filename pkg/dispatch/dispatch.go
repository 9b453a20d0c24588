// Package dispatch runs the work-item processor across a flat compile
// database in a fixed-size worker pool (§5), generalizing the teacher's
// Dispatcher/execution request-result channel pair from a dependency graph
// of tasks to independent compile-database entries.
package dispatch

import (
	"context"
	"io"
	"log"
	"runtime"
	"sync"

	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/process"
)

// EntryError pairs a failed entry's index with the error it produced, so
// callers can report per-entry failures without aborting the whole run.
type EntryError struct {
	Index int
	Entry cdb.Entry
	Err   error
}

// Work is what each worker invokes for one compile-database entry: classify,
// process, return the accumulated CC/AS/LD results.
type Work func(ctx context.Context, entry cdb.Entry) (*process.Result, error)

// Run fans entries out across numWorkers goroutines (defaulting to
// runtime.NumCPU() when zero), merges every worker's process.Result, and
// collects per-entry failures without stopping the remaining work. It
// returns early with the merged results so far if ctx is cancelled.
func Run(ctx context.Context, entries []cdb.Entry, numWorkers int, work Work, logger *log.Logger) (*process.Result, []EntryError) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("%d workers started for %d entries", numWorkers, len(entries))

	type indexed struct {
		index int
		entry cdb.Entry
	}
	requestCh := make(chan indexed, numWorkers)

	var mu sync.Mutex
	merged := &process.Result{}
	var failures []EntryError

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for item := range requestCh {
				res, err := work(ctx, item.entry)
				if err != nil {
					logger.Printf("worker %d entry %d: %v", worker, item.index, err)
				}
				mu.Lock()
				if err != nil {
					failures = append(failures, EntryError{Index: item.index, Entry: item.entry, Err: err})
				} else if res != nil {
					merged.CC = append(merged.CC, res.CC...)
					merged.AS = append(merged.AS, res.AS...)
					merged.LD = append(merged.LD, res.LD...)
				}
				mu.Unlock()
			}
		}(w)
	}

feed:
	for i, entry := range entries {
		select {
		case <-ctx.Done():
			break feed
		case requestCh <- indexed{index: i, entry: entry}:
		}
	}
	close(requestCh)
	wg.Wait()

	return merged, failures
}
