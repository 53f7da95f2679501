// Package testhelper builds filesystem fixtures for link resolution tests.
//
// Fixtures are described by lines:
//
//	dir/            creates a directory (optionally "dir/ 0o755")
//	path: content   writes a file (optionally "path: 0o644 content", content may be quoted)
//	path -> target  creates a symbolic link at path pointing to target
package testhelper

import (
	"cmp"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

type LineKind string

const (
	LineKindMkdir     LineKind = "mkdir"
	LineKindWriteFile LineKind = "write_file"
	LineKindSymlink   LineKind = "symlink"
)

type LineDirection struct {
	LineKind   LineKind
	Permission fs.FileMode
	Path       string
	TargetPath string // for symlink target
	Content    []byte // for write file content
}

func ExecuteLines(baseDir string, lines ...string) error {
	for _, line := range lines {
		l := ParseLine(line)
		if l.LineKind == "" {
			return fmt.Errorf("unknown line %q", line)
		}
		if err := l.ExecuteOs(baseDir); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteLinesAfero is like ExecuteLines but operates on fsys.
// Symlink lines require fsys to implement [afero.Linker].
func ExecuteLinesAfero(fsys afero.Fs, lines ...string) error {
	for _, line := range lines {
		l := ParseLine(line)
		if l.LineKind == "" {
			return fmt.Errorf("unknown line %q", line)
		}
		if err := l.ExecuteAfero(fsys); err != nil {
			return err
		}
	}
	return nil
}

// ParseLine parses a fixture line.
// Whichever of " -> " and ":" comes first decides between a symlink and a file,
// so file contents and link targets may contain the other separator.
func ParseLine(txt string) LineDirection {
	arrow := strings.Index(txt, " -> ")
	colon := strings.Index(txt, ": ")
	if colon < 0 && strings.HasSuffix(txt, ":") {
		colon = len(txt) - 1
	}
	switch {
	case arrow >= 0 && (colon < 0 || arrow < colon):
		path, target, _ := strings.Cut(txt, " -> ")
		return LineDirection{
			LineKind:   LineKindSymlink,
			Path:       path,
			TargetPath: target,
		}
	case colon >= 0:
		path, rest := txt[:colon], strings.TrimPrefix(txt[colon+1:], " ")

		var perm uint64
		if head, tail, ok := strings.Cut(rest, " "); ok {
			if p, err := strconv.ParseUint(head, 0, 32); err == nil {
				perm = p
				rest = tail
			}
		}

		content := rest
		if strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, "`") {
			unquoted, err := strconv.Unquote(rest)
			if err != nil {
				return LineDirection{}
			}
			content = unquoted
		}
		return LineDirection{
			LineKind:   LineKindWriteFile,
			Path:       path,
			Content:    []byte(content),
			Permission: fs.FileMode(perm),
		}
	case strings.Contains(txt, "/ ") || strings.HasSuffix(txt, "/"):
		var suf string
		if strings.Contains(txt, "/ ") {
			txt, suf, _ = strings.Cut(txt, "/ ")
		} else {
			txt = strings.TrimSuffix(txt, "/")
		}
		var perm uint64
		if suf != "" {
			perm, _ = strconv.ParseUint(suf, 0, 32)
		}
		return LineDirection{
			LineKind:   LineKindMkdir,
			Path:       txt,
			Permission: fs.FileMode(perm),
		}
	}
	return LineDirection{}
}

func (l LineDirection) ExecuteOs(baseDir string) error {
	perm := cmp.Or(l.Permission, fs.ModePerm) & fs.ModePerm
	baseDir = filepath.Clean(filepath.FromSlash(baseDir))
	path := filepath.Join(baseDir, filepath.FromSlash(l.Path))
	switch l.LineKind {
	default:
		return nil
	case LineKindMkdir:
		err := os.MkdirAll(path, fs.ModePerm)
		if err != nil {
			return err
		}
		return os.Chmod(path, perm)
	case LineKindWriteFile:
		err := os.MkdirAll(filepath.Dir(path), fs.ModePerm)
		if err != nil {
			return err
		}
		err = os.WriteFile(path, l.Content, fs.ModePerm)
		if err != nil {
			return err
		}
		return os.Chmod(path, perm)
	case LineKindSymlink:
		if runtime.GOOS == "plan9" {
			return nil
		}
		err := os.MkdirAll(filepath.Dir(path), fs.ModePerm)
		if err != nil {
			return err
		}
		return os.Symlink(filepath.FromSlash(l.TargetPath), path)
	}
}

func (l LineDirection) ExecuteAfero(fsys afero.Fs) error {
	perm := cmp.Or(l.Permission, fs.ModePerm) & fs.ModePerm
	path := filepath.FromSlash(l.Path)
	switch l.LineKind {
	default:
		return nil
	case LineKindMkdir:
		err := fsys.MkdirAll(path, fs.ModePerm)
		if err != nil {
			return err
		}
		return fsys.Chmod(path, perm)
	case LineKindWriteFile:
		err := fsys.MkdirAll(filepath.Dir(path), fs.ModePerm)
		if err != nil {
			return err
		}
		err = afero.WriteFile(fsys, path, l.Content, perm)
		if err != nil {
			return err
		}
		return fsys.Chmod(path, perm)
	case LineKindSymlink:
		linker, ok := fsys.(afero.Linker)
		if !ok {
			return &os.LinkError{Op: "symlink", Old: l.TargetPath, New: l.Path, Err: afero.ErrNoSymlink}
		}
		return linker.SymlinkIfPossible(filepath.FromSlash(l.TargetPath), path)
	}
}
