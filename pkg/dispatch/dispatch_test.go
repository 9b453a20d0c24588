package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/process"
)

func TestRunMergesResultsFromAllEntries(t *testing.T) {
	entries := []cdb.Entry{
		{Directory: "/a", Arguments: []string{"cc", "a.c"}},
		{Directory: "/b", Arguments: []string{"cc", "b.c"}},
		{Directory: "/c", Arguments: []string{"cc", "c.c"}},
	}
	work := func(ctx context.Context, e cdb.Entry) (*process.Result, error) {
		return &process.Result{CC: []process.CCResult{{Source: e.Directory}}}, nil
	}
	merged, failures := Run(context.Background(), entries, 2, work, nil)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(merged.CC) != 3 {
		t.Fatalf("got %d CC results", len(merged.CC))
	}
}

func TestRunCollectsPerEntryFailuresWithoutStopping(t *testing.T) {
	entries := []cdb.Entry{
		{Directory: "/a", Arguments: []string{"cc", "a.c"}},
		{Directory: "/bad", Arguments: []string{"cc", "bad.c"}},
		{Directory: "/c", Arguments: []string{"cc", "c.c"}},
	}
	work := func(ctx context.Context, e cdb.Entry) (*process.Result, error) {
		if e.Directory == "/bad" {
			return nil, errors.New("boom")
		}
		return &process.Result{CC: []process.CCResult{{Source: e.Directory}}}, nil
	}
	merged, failures := Run(context.Background(), entries, 2, work, nil)
	if len(failures) != 1 || failures[0].Entry.Directory != "/bad" {
		t.Fatalf("got failures %+v", failures)
	}
	if len(merged.CC) != 2 {
		t.Fatalf("got %d CC results", len(merged.CC))
	}
}

func TestRunRespectsWorkerCountBound(t *testing.T) {
	entries := make([]cdb.Entry, 10)
	for i := range entries {
		entries[i] = cdb.Entry{Directory: "/x", Arguments: []string{"cc", "x.c"}}
	}
	var concurrent, maxConcurrent int32
	work := func(ctx context.Context, e cdb.Entry) (*process.Result, error) {
		n := atomic.AddInt32(&concurrent, 1)
		for {
			max := atomic.LoadInt32(&maxConcurrent)
			if n <= max || atomic.CompareAndSwapInt32(&maxConcurrent, max, n) {
				break
			}
		}
		atomic.AddInt32(&concurrent, -1)
		return &process.Result{}, nil
	}
	Run(context.Background(), entries, 3, work, nil)
	if maxConcurrent > 3 {
		t.Fatalf("observed concurrency %d exceeds bound 3", maxConcurrent)
	}
}
