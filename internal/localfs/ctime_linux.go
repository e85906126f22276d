//go:build linux

package localfs

import (
	"io/fs"
	"syscall"
	"time"
)

// changeTime returns the inode change time on platforms that expose it via
// syscall.Stat_t, falling back to the modification time otherwise.
func changeTime(info fs.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	}
	return info.ModTime()
}
