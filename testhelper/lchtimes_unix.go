//go:build linux || darwin || freebsd || netbsd || openbsd

package testhelper

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// Lchtimes changes the access and modification times of path itself.
// Unlike [os.Chtimes], a symbolic link is not followed.
func Lchtimes(path string, atime, mtime time.Time) error {
	tv := []unix.Timeval{
		unix.NsecToTimeval(atime.UnixNano()),
		unix.NsecToTimeval(mtime.UnixNano()),
	}
	if err := unix.Lutimes(path, tv); err != nil {
		return &fs.PathError{Op: "lutimes", Path: path, Err: err}
	}
	return nil
}

// SupportsLchtimes reports whether Lchtimes is implemented on this platform.
func SupportsLchtimes() bool {
	return true
}
