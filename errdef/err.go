//go:build !plan9

// Package errdef defines platform dependent errno values used across linkmtime.
package errdef

import "syscall"

var (
	ELOOP = syscall.ELOOP
)
