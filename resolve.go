package linkmtime

import (
	"io/fs"
	"log/slog"
	"time"
)

// DefaultMaxHops is the hop bound used when a non positive bound is given.
// Chains of up to DefaultMaxHops links resolve; longer chains and cycles fail.
const DefaultMaxHops = 4

// Metadata describes the terminal entry of a resolved path.
type Metadata struct {
	// Name is the path as requested.
	Name string
	// Resolved is the path of the terminal, non-link entry.
	// It equals Name when Name is not a symbolic link.
	Resolved string
	// Hops is the number of symbolic links followed.
	Hops int
	// Info is the lstat result for Resolved.
	Info fs.FileInfo
}

// ModTime returns the modification time of the terminal entry.
func (m Metadata) ModTime() time.Time {
	if m.Info == nil {
		return time.Time{}
	}
	return m.Info.ModTime()
}

// IsSymlink reports whether Info describes a symbolic link.
// This is always false for Metadata returned without an error.
func (m Metadata) IsSymlink() bool {
	return m.Info != nil && m.Info.Mode()&fs.ModeSymlink != 0
}

// Resolver resolves link chains on Fs.
// The zero value is not usable; Fs must be set.
//
// Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	Fs Fs
	// MaxHops bounds the number of links followed.
	// Non positive values select DefaultMaxHops.
	MaxHops int
	// Logger, if non nil, receives a debug record per hop.
	Logger *slog.Logger
}

// Resolve is a shorthand for (&Resolver{Fs: fsys, MaxHops: maxHops}).Resolve(name).
func Resolve(fsys Fs, name string, maxHops int) (Metadata, error) {
	r := &Resolver{Fs: fsys, MaxHops: maxHops}
	return r.Resolve(name)
}

// Resolve returns metadata of the entry name ultimately refers to.
//
// Links are followed one at a time: each link target is read with ReadLink
// and examined with Lstat. A relative target is interpreted from the link's
// directory after resolving symbolic links in that directory's path,
// and links in the target's own directory elements are resolved as well,
// so ".." behaves as it does for the kernel.
// The hop bound is checked before following each link,
// so at most MaxHops links are followed per call.
//
// Errors are of type [*ChainError].
// A missing entry anywhere in the chain satisfies errors.Is(err, fs.ErrNotExist).
// Exceeding the bound satisfies errors.Is(err, [ErrLinkChainTooDeep]).
func (r *Resolver) Resolve(name string) (Metadata, error) {
	maxHops := r.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	cur := name
	info, err := r.Fs.Lstat(cur)
	if err != nil {
		return Metadata{}, &ChainError{Path: name, Last: cur, Err: WrapPathErr("lstat", cur, err)}
	}

	hops := 0
	for info.Mode()&fs.ModeSymlink != 0 {
		if hops >= maxHops {
			return Metadata{}, &ChainError{Path: name, Last: cur, Hops: hops, Err: ErrLinkChainTooDeep}
		}

		target, err := r.Fs.ReadLink(cur)
		if err != nil {
			return Metadata{}, &ChainError{Path: name, Last: cur, Hops: hops, Err: WrapPathErr("readlink", cur, err)}
		}
		hops++
		next, err := follow(r.Fs, cur, target)
		if err != nil {
			return Metadata{}, &ChainError{Path: name, Last: cur, Hops: hops, Err: err}
		}

		if r.Logger != nil {
			r.Logger.Debug("resolving link", "hop", hops-1, "link", cur, "target", next)
		}

		cur = next

		info, err = r.Fs.Lstat(cur)
		if err != nil {
			return Metadata{}, &ChainError{Path: name, Last: cur, Hops: hops, Err: WrapPathErr("lstat", cur, err)}
		}
	}

	return Metadata{
		Name:     name,
		Resolved: cur,
		Hops:     hops,
		Info:     info,
	}, nil
}

// ModTime returns the modification time of the entry name ultimately refers to.
func ModTime(fsys Fs, name string, maxHops int) (time.Time, error) {
	m, err := Resolve(fsys, name, maxHops)
	if err != nil {
		return time.Time{}, err
	}
	return m.ModTime(), nil
}
