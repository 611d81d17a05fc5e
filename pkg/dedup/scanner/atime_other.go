//go:build !darwin && !linux

package scanner

import (
	"os"
	"time"
)

// accessTime returns the last access time of a file.
// On unsupported platforms, returns the zero time.
func accessTime(info os.FileInfo) time.Time {
	return time.Time{}
}
