package linkmtime

import (
	"io/fs"

	"github.com/spf13/afero"
)

var _ Fs = (*aferoFs)(nil)

type aferoFs struct {
	fsys afero.Fs
}

// FromAfero adapts fsys to [Fs].
//
// Lstat is served by [afero.Lstater] when fsys implements it,
// otherwise it falls back to Stat; such a filesystem never reports symbolic links.
// ReadLink is served by [afero.LinkReader]. Without it ReadLink fails with an error
// wrapping [afero.ErrNoReadlink].
func FromAfero(fsys afero.Fs) Fs {
	return &aferoFs{fsys: fsys}
}

// OsFs returns an [Fs] backed by the operating system filesystem.
// Names are interpreted as the os package does: relative names are relative to
// the working directory.
func OsFs() Fs {
	return FromAfero(afero.NewOsFs())
}

func (a *aferoFs) Lstat(name string) (fs.FileInfo, error) {
	if l, ok := a.fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return a.fsys.Stat(name)
}

func (a *aferoFs) ReadLink(name string) (string, error) {
	if r, ok := a.fsys.(afero.LinkReader); ok {
		return r.ReadlinkIfPossible(name)
	}
	return "", WrapPathErr("readlink", name, afero.ErrNoReadlink)
}
