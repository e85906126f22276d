//go:build !linux

package localfs

import (
	"io/fs"
	"time"
)

// changeTime falls back to the modification time on platforms where this
// package does not know how to read the inode change time.
func changeTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
