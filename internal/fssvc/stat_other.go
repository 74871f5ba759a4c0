//go:build !linux

package fssvc

import (
	"os"
	"time"
)

// statTimes on platforms without a portable ctime/atime: modify time stands
// in for all three.
func statTimes(info os.FileInfo) (created, modified, accessed time.Time) {
	modified = info.ModTime()
	return modified, modified, modified
}
