//go:build unix

package linkmtime

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/ngicks/linkmtime/testhelper"
	"github.com/spf13/afero"
	"gotest.tools/v3/assert"
)

func makeChainedSymlink(baseDir string, num int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range num {
			if !yield(fmt.Sprintf("%s/%d -> %d", baseDir, i, i+1)) {
				return
			}
		}
	}
}

func prepare(t *testing.T, lines ...string) string {
	t.Helper()
	// resolved paths have links in the temp dir itself resolved too.
	tempDir, err := filepath.EvalSymlinks(t.TempDir())
	assert.NilError(t, err)
	assert.NilError(t, testhelper.ExecuteLines(tempDir, lines...))
	return tempDir
}

type resolveTestCase struct {
	name     string
	lines    []string
	from     string
	maxHops  int
	resolved string // empty when err is non nil
	hops     int
	err      error
}

func TestResolve(t *testing.T) {
	cases := []resolveTestCase{
		{
			name:     "regular file",
			lines:    []string{"file: foobarbaz"},
			from:     "file",
			resolved: "file",
			hops:     0,
		},
		{
			name:     "directory",
			lines:    []string{"dir/"},
			from:     "dir",
			resolved: "dir",
			hops:     0,
		},
		{
			name:     "single link",
			lines:    []string{"file: foobarbaz", "link -> file"},
			from:     "link",
			resolved: "file",
			hops:     1,
		},
		{
			name:     "link to link",
			lines:    []string{"file: foobarbaz", "link -> file", "link.link -> link"},
			from:     "link.link",
			resolved: "file",
			hops:     2,
		},
		{
			name:     "relative target across directories",
			lines:    []string{"foo/bar/file: x", "foo/a -> bar/b", "foo/bar/b -> ./file", "c -> foo/a"},
			from:     "c",
			resolved: "foo/bar/file",
			hops:     3,
		},
		{
			name: "relative target through linked directory",
			lines: []string{
				"real/sub/file: x",
				"sub/file: decoy",
				"d -> real/sub",
				"real/sub/link -> ../sub/file",
			},
			from:     "d/link",
			resolved: "real/sub/file",
			hops:     1,
		},
		{
			name: "dot dot after linked directory in target",
			lines: []string{
				"x/y/file: x",
				"x/y/z/",
				"file: decoy",
				"w/alias -> ../x/y/z",
				"w/link -> alias/../file",
			},
			from:     "w/link",
			resolved: "x/y/file",
			hops:     1,
		},
		{
			name:     "absolute target through linked directory",
			lines:    []string{"real/file: x", "d -> real", "link -> $TMP/d/file"},
			from:     "link",
			resolved: "real/file",
			hops:     1,
		},
		{
			name:     "link to directory",
			lines:    []string{"dir/", "link -> dir"},
			from:     "link",
			resolved: "dir",
			hops:     1,
		},
		{
			name: "chain at bound",
			lines: append(
				slices.Collect(makeChainedSymlink("foo", DefaultMaxHops)),
				fmt.Sprintf("foo/%d: x", DefaultMaxHops),
			),
			from:     "foo/0",
			resolved: fmt.Sprintf("foo/%d", DefaultMaxHops),
			hops:     DefaultMaxHops,
		},
		{
			name: "chain over bound",
			lines: append(
				slices.Collect(makeChainedSymlink("foo", DefaultMaxHops+1)),
				fmt.Sprintf("foo/%d: x", DefaultMaxHops+1),
			),
			from: "foo/0",
			hops: DefaultMaxHops,
			err:  ErrLinkChainTooDeep,
		},
		{
			name: "custom bound",
			lines: append(
				slices.Collect(makeChainedSymlink("foo", 2)),
				"foo/2: x",
			),
			from:    "foo/0",
			maxHops: 1,
			hops:    1,
			err:     ErrLinkChainTooDeep,
		},
		{
			name: "longer custom bound",
			lines: append(
				slices.Collect(makeChainedSymlink("foo", 10)),
				"foo/10: x",
			),
			from:     "foo/0",
			maxHops:  10,
			resolved: "foo/10",
			hops:     10,
		},
		{
			name:  "self reference",
			lines: []string{"self -> self"},
			from:  "self",
			hops:  DefaultMaxHops,
			err:   ErrLinkChainTooDeep,
		},
		{
			name:  "targeting each other",
			lines: []string{"a -> b", "b -> a"},
			from:  "a",
			hops:  DefaultMaxHops,
			err:   syscall.ELOOP,
		},
		{
			name:  "not found",
			lines: []string{"file: x"},
			from:  "nonexistent",
			hops:  0,
			err:   fs.ErrNotExist,
		},
		{
			name:  "broken link",
			lines: []string{"link -> nonexistent"},
			from:  "link",
			hops:  1,
			err:   fs.ErrNotExist,
		},
		{
			name:  "broken link mid chain",
			lines: []string{"a -> b", "b -> c"},
			from:  "a",
			hops:  2,
			err:   fs.ErrNotExist,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tempDir := prepare(t)
			lines := make([]string, len(tc.lines))
			for i, line := range tc.lines {
				lines[i] = strings.ReplaceAll(line, "$TMP", filepath.ToSlash(tempDir))
			}
			assert.NilError(t, testhelper.ExecuteLines(tempDir, lines...))
			from := filepath.Join(tempDir, filepath.FromSlash(tc.from))

			m, err := Resolve(OsFs(), from, tc.maxHops)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				var chainErr *ChainError
				assert.Assert(t, errors.As(err, &chainErr))
				assert.Equal(t, from, chainErr.Path)
				assert.Equal(t, tc.hops, chainErr.Hops)
				assert.Equal(t, Metadata{}, m)
				return
			}

			assert.NilError(t, err)
			assert.Equal(t, from, m.Name)
			assert.Equal(t, filepath.Join(tempDir, filepath.FromSlash(tc.resolved)), m.Resolved)
			assert.Equal(t, tc.hops, m.Hops)
			assert.Assert(t, !m.IsSymlink())

			direct, err := os.Lstat(m.Resolved)
			assert.NilError(t, err)
			assert.Assert(t, m.ModTime().Equal(direct.ModTime()))
		})
	}
}

func TestResolve_link_mtime_differs(t *testing.T) {
	if !testhelper.SupportsLchtimes() {
		t.Skip("lutimes is not supported")
	}

	tempDir := prepare(t,
		"Jupytext.base.py: print(1)",
		"Jupytext.link -> Jupytext.base.py",
		"Jupytext.link.link -> Jupytext.link",
	)
	base := filepath.Join(tempDir, "Jupytext.base.py")
	link := filepath.Join(tempDir, "Jupytext.link")
	linkLink := filepath.Join(tempDir, "Jupytext.link.link")

	t0 := time.Now().Add(-time.Hour).Truncate(time.Second)
	assert.NilError(t, os.Chtimes(base, t0, t0))
	// Touching the link itself, 5 seconds later.
	assert.NilError(t, testhelper.Lchtimes(link, t0.Add(5*time.Second), t0.Add(5*time.Second)))

	linkInfo, err := os.Lstat(link)
	assert.NilError(t, err)
	assert.Assert(t, linkInfo.ModTime().Equal(t0.Add(5*time.Second)), "lstat reports link's own mtime")

	for _, name := range []string{base, link, linkLink} {
		mtime, err := ModTime(OsFs(), name, DefaultMaxHops)
		assert.NilError(t, err)
		assert.Assert(t, mtime.Equal(t0), "%s: expected %s, got %s", name, t0, mtime)
	}
}

func TestResolve_idempotent(t *testing.T) {
	tempDir := prepare(t, "file: x", "link -> file", "loop -> loop")
	r := &Resolver{Fs: OsFs()}

	for _, name := range []string{"file", "link"} {
		first, err := r.Resolve(filepath.Join(tempDir, name))
		assert.NilError(t, err)
		second, err := r.Resolve(filepath.Join(tempDir, name))
		assert.NilError(t, err)
		assert.Equal(t, first.Resolved, second.Resolved)
		assert.Equal(t, first.Hops, second.Hops)
		assert.Assert(t, first.ModTime().Equal(second.ModTime()))
	}

	_, err1 := r.Resolve(filepath.Join(tempDir, "loop"))
	_, err2 := r.Resolve(filepath.Join(tempDir, "loop"))
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestResolve_base_path_fs(t *testing.T) {
	tempDir := prepare(t,
		"foo/bar/file: x",
		"foo/a -> ./c/d",
		"foo/c/d -> ../bar/file",
		"escape -> /etc/passwd",
	)
	fsys := FromAfero(afero.NewBasePathFs(afero.NewOsFs(), tempDir))

	m, err := Resolve(fsys, filepath.FromSlash("foo/a"), 0)
	assert.NilError(t, err)
	assert.Equal(t, filepath.FromSlash("foo/bar/file"), m.Resolved)
	assert.Equal(t, 2, m.Hops)

	// Absolute targets are interpreted by the rooted filesystem.
	_, err = Resolve(fsys, "escape", 0)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

type statOnlyFs struct {
	afero.Fs
}

func TestResolve_afero_mem(t *testing.T) {
	mem := afero.NewMemMapFs()
	assert.NilError(t, testhelper.ExecuteLinesAfero(mem, "dir/", "dir/file: x"))

	for _, fsys := range []Fs{FromAfero(mem), FromAfero(statOnlyFs{mem})} {
		m, err := Resolve(fsys, filepath.FromSlash("dir/file"), 0)
		assert.NilError(t, err)
		assert.Equal(t, 0, m.Hops)

		info, err := mem.Stat(filepath.FromSlash("dir/file"))
		assert.NilError(t, err)
		assert.Assert(t, m.ModTime().Equal(info.ModTime()))

		_, err = Resolve(fsys, "missing", 0)
		assert.Equal(t, KindNotFound, KindOf(err))
	}

	_, err := FromAfero(statOnlyFs{mem}).ReadLink("dir/file")
	assert.ErrorIs(t, err, afero.ErrNoReadlink)
}

func TestResolve_logs_each_hop(t *testing.T) {
	tempDir := prepare(t, "file: x", "b -> file", "a -> b")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := &Resolver{Fs: OsFs(), Logger: logger}
	_, err := r.Resolve(filepath.Join(tempDir, "a"))
	assert.NilError(t, err)

	assert.Equal(t, 2, strings.Count(buf.String(), "resolving link"))
	assert.Assert(t, strings.Contains(buf.String(), "hop=1"))
}

func TestChainError_message(t *testing.T) {
	tempDir := prepare(t, "a -> b", "b -> a", "c -> missing")

	_, err := Resolve(OsFs(), filepath.Join(tempDir, "a"), 3)
	assert.ErrorContains(t, err, "after 3 hop(s)")
	assert.ErrorContains(t, err, filepath.Join(tempDir, "a"))
	assert.ErrorContains(t, err, "link chain too deep")
	assert.Equal(t, KindLinkChainTooDeep, KindOf(err))

	_, err = Resolve(OsFs(), filepath.Join(tempDir, "c"), 3)
	assert.ErrorContains(t, err, "after 1 hop(s) at "+filepath.Join(tempDir, "missing"))
	assert.Equal(t, KindNotFound, KindOf(err))
}
