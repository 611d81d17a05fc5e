// Package scanner walks directory trees and yields candidate file records for
// hashing. It skips zero-byte files and ignored names, records stat failures
// without aborting, and reports progress through a throttled callback.
package scanner

import (
	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

// DefaultIgnores are file names skipped by default. They are desktop metadata
// droppings that show up as false duplicates across directories.
var DefaultIgnores = []string{".DS_Store", "Thumbs.db"}

// Options configures the scanner behavior.
type Options struct {
	// Roots are the directories to scan. At least one is required.
	Roots []string

	// Ignore contains ignore rules matched against the file base name.
	// A rule matches when the name contains the rule as a substring, starts
	// with it, or matches it as a glob pattern.
	Ignore []string

	// MinSize is the minimum file size in bytes to include. Zero-byte files
	// are always skipped regardless of this setting.
	MinSize int64

	// OnProgress is called periodically with scan progress updates.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.ScanProgress)
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Roots:  []string{"."},
		Ignore: DefaultIgnores,
	}
}

// Validate normalizes the options, applying defaults for missing values.
func (o *Options) Validate() error {
	if len(o.Roots) == 0 {
		o.Roots = []string{"."}
	}
	if o.Ignore == nil {
		o.Ignore = DefaultIgnores
	}
	return nil
}
