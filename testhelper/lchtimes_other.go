//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package testhelper

import (
	"errors"
	"io/fs"
	"time"
)

func Lchtimes(path string, atime, mtime time.Time) error {
	return &fs.PathError{Op: "lutimes", Path: path, Err: errors.ErrUnsupported}
}

func SupportsLchtimes() bool {
	return false
}
