package main

import (
	"fmt"
	"io/fs"
	"syscall"
	"time"

	"github.com/djherbis/times"
	"golang.org/x/sys/unix"
)

// deviceOf returns the device id of path, used to keep a walk on one filesystem.
func deviceOf(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return uint64(st.Dev), nil
}

func deviceOfInfo(info fs.FileInfo) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return 0, false
	}
	return uint64(st.Dev), true
}

// lastAccessTime returns the access time of path, or the zero time.
func lastAccessTime(path string) time.Time {
	ts, err := times.Lstat(path)
	if err != nil {
		return time.Time{}
	}
	return ts.AccessTime()
}
