//go:build !linux && !darwin

package disk

import (
	"io/fs"
	"time"
)

// accessTime falls back to the modification time where atime is not exposed,
// which turns the size sweep into an expiration-ordered one.
func accessTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
