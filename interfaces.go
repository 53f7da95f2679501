// Package linkmtime resolves the effective modification time of a path,
// following symbolic link chains up to a bounded number of hops.
//
// A plain lstat on a symbolic link reports the link's own metadata.
// Tools pairing a link with the file it points at then observe the link's
// mtime, which may be older or newer than the file's.
// [Resolve] reports the metadata of the terminal, non-link entry instead.
package linkmtime

import "io/fs"

type LstatFs interface {
	Lstat(name string) (fs.FileInfo, error)
}

type ReadLinkFs interface {
	ReadLink(name string) (string, error)
}

// Fs is the set of read-only operations the resolver needs.
type Fs interface {
	LstatFs
	ReadLinkFs
}
