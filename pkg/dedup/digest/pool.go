package digest

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

// HashError records a file that could not be hashed.
type HashError struct {
	// Path is the file that failed.
	Path string `json:"path"`

	// Error is the failure description.
	Error string `json:"error"`
}

// PoolOptions configures a hashing pool run.
type PoolOptions struct {
	// Algorithms are the digests to compute for every file.
	Algorithms []Algorithm

	// ChunkSize is the read buffer size in bytes. Zero uses DefaultChunkSize.
	ChunkSize int

	// Workers bounds hashing concurrency. Zero or negative uses GOMAXPROCS.
	Workers int

	// OnResult is called once per completed file, from the hashing goroutines.
	// It must be safe to call concurrently. Optional.
	OnResult func(*Result)
}

// HashAll hashes every file record with a bounded worker pool and returns the
// results in input order, so repeated runs over unchanged input produce
// identical sequences regardless of worker scheduling.
//
// Per-file failures are collected, never fatal. Cancellation is honored at
// file boundaries only: a file being hashed is finished or its partial digest
// discarded, and remaining files are skipped.
func HashAll(ctx context.Context, files []types.FileRecord, opts PoolOptions) ([]*Result, []HashError) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(files))

	var mu sync.Mutex
	var failures []HashError

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rec := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := Record(rec, opts.Algorithms, opts.ChunkSize)
			if err != nil {
				mu.Lock()
				failures = append(failures, HashError{Path: rec.Path, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			results[i] = res
			if opts.OnResult != nil {
				opts.OnResult(res)
			}
			return nil
		})
	}
	_ = g.Wait()

	// Compact away slots left empty by failures or cancellation.
	compacted := results[:0]
	for _, res := range results {
		if res != nil {
			compacted = append(compacted, res)
		}
	}
	return compacted, failures
}
