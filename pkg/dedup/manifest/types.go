// Package manifest persists and verifies recorded file digests. A manifest
// associates paths with expected digest values; verification re-hashes the
// referenced files and classifies each entry as verified, failed, missing,
// or errored.
package manifest

import (
	"errors"
	"time"

	"github.com/jamesainslie/dedup/pkg/dedup/digest"
)

// ErrManifestParse indicates malformed manifest data.
var ErrManifestParse = errors.New("manifest parse error")

// Format identifies a manifest serialization form.
type Format string

const (
	// FormatJSON is an indented JSON list of entries.
	FormatJSON Format = "json"
	// FormatYAML is a YAML list of entries.
	FormatYAML Format = "yaml"
	// FormatChecksum is the line-oriented `<digest>  <path>` form used by
	// conventional checksum tools, one algorithm for the whole file.
	FormatChecksum Format = "checksum"
)

// Entry is one recorded file in a manifest.
// Size, ModTime, and Duration are informational; verification relies only on
// Path and Hashes.
type Entry struct {
	// Path is the file path as recorded, not necessarily absolute.
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes at recording time.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`

	// ModTime is the modification time at recording time.
	ModTime time.Time `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`

	// Hashes maps algorithms to their expected digest values.
	Hashes digest.DigestSet `json:"hashes" yaml:"hashes"`

	// Duration is the time spent hashing the file when it was recorded.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Status classifies the outcome of verifying one entry.
type Status string

const (
	// StatusVerified means every recorded digest matched.
	StatusVerified Status = "verified"
	// StatusFailed means at least one recorded digest did not match.
	StatusFailed Status = "failed"
	// StatusMissing means the referenced file does not exist.
	StatusMissing Status = "missing"
	// StatusError means re-hashing failed with an I/O error.
	StatusError Status = "error"
)

// Mismatch carries the expected and actual digest for one failed algorithm.
type Mismatch struct {
	// Algorithm is the digest algorithm that mismatched.
	Algorithm digest.Algorithm `json:"algorithm" yaml:"algorithm"`

	// Expected is the digest recorded in the manifest.
	Expected string `json:"expected" yaml:"expected"`

	// Actual is the digest computed from the current file content.
	Actual string `json:"actual" yaml:"actual"`
}

// Result is the verification outcome for one entry.
type Result struct {
	// Path is the entry path as recorded.
	Path string `json:"path" yaml:"path"`

	// Status is the classification of this entry.
	Status Status `json:"status" yaml:"status"`

	// Mismatches holds expected-vs-actual values for every algorithm that
	// failed to match. Populated only for StatusFailed.
	Mismatches []Mismatch `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`

	// Reason describes why the entry is missing or errored.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Report aggregates the verification outcomes of one run.
type Report struct {
	// RunID uniquely identifies this verification run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Results holds one result per manifest entry, in manifest order.
	Results []Result `json:"results" yaml:"results"`

	// Verified, Failed, Missing, and Errors are the bucket counts.
	Verified int `json:"verified" yaml:"verified"`
	Failed   int `json:"failed" yaml:"failed"`
	Missing  int `json:"missing" yaml:"missing"`
	Errors   int `json:"errors" yaml:"errors"`

	// Elapsed is the total verification time.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// AllVerified reports whether every entry verified cleanly.
func (r *Report) AllVerified() bool {
	return r.Failed == 0 && r.Missing == 0 && r.Errors == 0
}
