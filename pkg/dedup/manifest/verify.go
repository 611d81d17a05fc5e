package manifest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/dedup/pkg/dedup/digest"
	"github.com/jamesainslie/dedup/pkg/dedup/logging"
)

func logger() *logging.Logger { return logging.Get("verify") }

// VerifyOptions configures a verification run.
type VerifyOptions struct {
	// ChunkSize is the read buffer size for re-hashing. Zero uses the
	// digest engine default.
	ChunkSize int

	// OnResult is called after each entry is classified. Optional.
	OnResult func(Result)
}

// Verify re-hashes every referenced file and classifies each entry.
//
// A missing file classifies as StatusMissing, never StatusFailed. Exactly the
// algorithms present in each entry are recomputed, in one read pass per file.
// Digest comparison is case-insensitive. An I/O error while re-hashing
// classifies that entry as StatusError and the run continues; only
// cancellation stops it early.
func Verify(ctx context.Context, entries []Entry, opts VerifyOptions) *Report {
	start := time.Now()
	report := &Report{
		RunID:   uuid.NewString(),
		Results: make([]Result, 0, len(entries)),
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		res := verifyEntry(entry, opts.ChunkSize)
		report.Results = append(report.Results, res)
		switch res.Status {
		case StatusVerified:
			report.Verified++
		case StatusFailed:
			report.Failed++
		case StatusMissing:
			report.Missing++
		case StatusError:
			report.Errors++
		}
		if opts.OnResult != nil {
			opts.OnResult(res)
		}
	}

	report.Elapsed = time.Since(start)
	logger().Info("verification complete",
		"run_id", report.RunID,
		"verified", report.Verified,
		"failed", report.Failed,
		"missing", report.Missing,
		"errors", report.Errors)
	return report
}

// verifyEntry classifies a single manifest entry.
func verifyEntry(entry Entry, chunkSize int) Result {
	if len(entry.Hashes) == 0 {
		return Result{
			Path:   entry.Path,
			Status: StatusError,
			Reason: "entry has no recorded digests",
		}
	}

	if _, err := os.Stat(entry.Path); err != nil {
		if os.IsNotExist(err) {
			return Result{
				Path:   entry.Path,
				Status: StatusMissing,
				Reason: "file not found",
			}
		}
		return Result{
			Path:   entry.Path,
			Status: StatusError,
			Reason: fmt.Sprintf("stat: %v", err),
		}
	}

	algos := entry.Hashes.Algorithms()
	actual, err := digest.Sum(entry.Path, algos, chunkSize)
	if err != nil {
		return Result{
			Path:   entry.Path,
			Status: StatusError,
			Reason: err.Error(),
		}
	}

	var mismatches []Mismatch
	for _, algo := range algos {
		expected := entry.Hashes[algo]
		got := actual[algo]
		if !strings.EqualFold(expected, got) {
			mismatches = append(mismatches, Mismatch{
				Algorithm: algo,
				Expected:  expected,
				Actual:    got,
			})
		}
	}

	if len(mismatches) > 0 {
		return Result{
			Path:       entry.Path,
			Status:     StatusFailed,
			Mismatches: mismatches,
		}
	}
	return Result{Path: entry.Path, Status: StatusVerified}
}
