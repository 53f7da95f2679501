package linkmtime

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ngicks/linkmtime/errdef"
)

// following linux's maximum: https://man7.org/linux/man-pages/man7/path_resolution.7.html
const maxSymlinkResolutionCount = 40

// resolvePath interprets rel relative to base, following symbolic links found in
// every component, including the last one.
// It returns a path without symbolic links, "." or ".." elements
// (except leading ".." of a relative result).
//
// base must itself be free of symbolic links. An empty base is the working directory.
// An absolute rel ignores base.
//
// ".." elements are applied to the already resolved prefix, so a link followed by ".."
// moves to the parent of the link's target, as the kernel does.
func resolvePath(fsys Fs, base, rel string) (string, error) {
	resolved := base
	if filepath.IsAbs(rel) {
		resolved, rel = splitRoot(rel)
	}

	pending := strings.Split(rel, string(filepath.Separator))
	numSymlink := 0
	for len(pending) > 0 {
		part := pending[0]
		pending = pending[1:]

		switch part {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Join(resolved, "..")
			continue
		}

		next := filepath.Join(resolved, part)
		info, err := fsys.Lstat(next)
		if err != nil {
			return "", WrapPathErr("lstat", next, err)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}

		numSymlink++
		if numSymlink > maxSymlinkResolutionCount {
			return "", WrapPathErr("lstat", next, errdef.ELOOP)
		}

		target, err := fsys.ReadLink(next)
		if err != nil {
			return "", WrapPathErr("readlink", next, err)
		}
		if filepath.IsAbs(target) {
			resolved, target = splitRoot(target)
		}
		pending = append(strings.Split(target, string(filepath.Separator)), pending...)
	}

	if resolved == "" {
		return ".", nil
	}
	return resolved, nil
}

// splitRoot splits an absolute path into its root (volume and separator) and the rest.
func splitRoot(p string) (root, rest string) {
	vol := filepath.VolumeName(p)
	return vol + string(filepath.Separator), p[len(vol):]
}

// follow returns the path of the entry the link at cur, whose content is target, refers to.
// Directories are resolved; the last element of target is left as is
// so that it can be examined with Lstat.
func follow(fsys Fs, cur, target string) (string, error) {
	var base string
	if !filepath.IsAbs(target) {
		dir, err := resolvePath(fsys, "", filepath.Dir(cur))
		if err != nil {
			return "", err
		}
		base = dir
	}

	dirPart, last := target, ""
	if idx := strings.LastIndex(target, string(filepath.Separator)); idx >= 0 {
		dirPart, last = target[:idx+1], target[idx+1:]
	} else {
		dirPart, last = "", target
	}

	if last == "" || last == "." || last == ".." {
		return resolvePath(fsys, base, target)
	}

	dir, err := resolvePath(fsys, base, dirPart)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, last), nil
}
