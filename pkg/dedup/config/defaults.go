// Package config provides configuration management for the dedup tool.
package config

// Default configuration values for dedup.
const (
	// DefaultAlgorithm is the digest algorithm used when none is requested.
	DefaultAlgorithm = "sha256"

	// DefaultChunkSize is the read buffer size used when hashing files.
	DefaultChunkSize = "64KiB"

	// DefaultWorkers is the number of concurrent hashing workers.
	// Zero means one worker per CPU.
	DefaultWorkers = 0

	// DefaultMinSize is the minimum file size to include in scans.
	// Zero-byte files are always skipped regardless of this value.
	DefaultMinSize = "0"

	// DefaultOutput is the output format used when none is requested.
	DefaultOutput = "detailed"

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/dedup"
)

// DefaultIgnores contains file name patterns excluded from scans by default.
var DefaultIgnores = []string{
	".DS_Store",
	"Thumbs.db",
}
