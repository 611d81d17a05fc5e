// Package output provides formatters for displaying hash, duplicate,
// verification, and resolution reports in various output formats
// (detailed, plain, json, yaml).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("detailed")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/dedup/pkg/dedup/digest"
	"github.com/jamesainslie/dedup/pkg/dedup/dupes"
	"github.com/jamesainslie/dedup/pkg/dedup/manifest"
	"github.com/jamesainslie/dedup/pkg/dedup/resolve"
)

// ScanStats contains statistics about a tree walk.
type ScanStats struct {
	// DirsScanned is the total number of directories traversed.
	DirsScanned int64 `json:"dirs_scanned" yaml:"dirs_scanned"`

	// FilesScanned is the total number of regular files examined.
	FilesScanned int64 `json:"files_scanned" yaml:"files_scanned"`

	// EmptySkipped is the number of zero-byte files skipped.
	EmptySkipped int64 `json:"empty_skipped" yaml:"empty_skipped"`

	// IgnoredSkipped is the number of files excluded by ignore rules.
	IgnoredSkipped int64 `json:"ignored_skipped" yaml:"ignored_skipped"`

	// TotalSize is the combined size in bytes of collected files.
	TotalSize int64 `json:"total_size" yaml:"total_size"`

	// Duration is the total time taken to complete the walk.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// LargeFile is one entry in a largest-files ranking.
type LargeFile struct {
	Path      string    `json:"path" yaml:"path"`
	Size      int64     `json:"size" yaml:"size"`
	SizeHuman string    `json:"size_human" yaml:"size_human"`
	ModTime   time.Time `json:"mod_time" yaml:"mod_time"`
}

// DuplicateReport carries duplicate groups together with their summary.
type DuplicateReport struct {
	Algorithm digest.Algorithm `json:"algorithm" yaml:"algorithm"`
	Groups    []dupes.Group    `json:"groups" yaml:"groups"`
	Summary   dupes.Summary    `json:"summary" yaml:"summary"`
}

// Report contains the complete output data for formatting. Only the
// sections relevant to the command that produced it are populated.
type Report struct {
	// Command names the operation that produced the report.
	Command string `json:"command" yaml:"command"`

	// Sources lists the scanned roots or the manifest path.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Stats contains tree walk statistics when a scan ran.
	Stats *ScanStats `json:"stats,omitempty" yaml:"stats,omitempty"`

	// Hashes contains per-file digest results.
	Hashes []digest.Result `json:"hashes,omitempty" yaml:"hashes,omitempty"`

	// Duplicates contains duplicate groups and their summary.
	Duplicates *DuplicateReport `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`

	// Verification contains a manifest verification report.
	Verification *manifest.Report `json:"verification,omitempty" yaml:"verification,omitempty"`

	// Resolution contains the outcome of a remove or relocate run.
	Resolution *resolve.Outcome `json:"resolution,omitempty" yaml:"resolution,omitempty"`

	// Largest contains a largest-files ranking.
	Largest []LargeFile `json:"largest,omitempty" yaml:"largest,omitempty"`

	// Warnings contains non-fatal problems encountered along the way.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Interrupted indicates the run was cancelled by the user.
	Interrupted bool `json:"interrupted" yaml:"interrupted"`
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// digestNames returns a digest set as a name-keyed map for serialization.
func digestNames(set digest.DigestSet) map[string]string {
	out := make(map[string]string, len(set))
	for algo, value := range set {
		out[algo.String()] = value
	}
	return out
}
