//go:build linux

package scanner

import (
	"os"
	"syscall"
	"time"
)

// accessTime returns the last access time of a file, or the zero time when
// the underlying stat data is unavailable.
func accessTime(info os.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
}
