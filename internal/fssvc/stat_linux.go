//go:build linux

package fssvc

import (
	"os"
	"syscall"
	"time"
)

// statTimes extracts change/modify/access times where the platform exposes
// them; modify time stands in for the rest otherwise.
func statTimes(info os.FileInfo) (created, modified, accessed time.Time) {
	modified = info.ModTime()
	created, accessed = modified, modified
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		created = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
		accessed = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return created, modified, accessed
}
