package fsys_test

import (
	"io"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/fidx/pkg/fidx/fsys"
)

func TestMemWalkVisitsSortedDepthFirst(t *testing.T) {
	mem := fsys.NewMem()
	mem.WriteFile("/root/b.txt", []byte("b"), time.Now())
	mem.WriteFile("/root/a/one.txt", []byte("1"), time.Now())
	mem.WriteFile("/root/a/two.txt", []byte("2"), time.Now())

	var visited []string
	err := mem.Walk("/root", func(path string, _ fs.DirEntry, err error) error {
		require.NoError(t, err)
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/root", "/root/a", "/root/a/one.txt", "/root/a/two.txt", "/root/b.txt"}, visited)
}

func TestMemWalkSkipDirPrunes(t *testing.T) {
	mem := fsys.NewMem()
	mem.WriteFile("/root/skip/inner.txt", []byte("x"), time.Now())
	mem.WriteFile("/root/keep.txt", []byte("y"), time.Now())

	var visited []string
	err := mem.Walk("/root", func(path string, d fs.DirEntry, _ error) error {
		if d.IsDir() && d.Name() == "skip" {
			return fs.SkipDir
		}
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	assert.NotContains(t, visited, "/root/skip/inner.txt")
	assert.Contains(t, visited, "/root/keep.txt")
}

func TestMemWalkMissingRootErrors(t *testing.T) {
	err := fsys.NewMem().Walk("/nope", func(string, fs.DirEntry, error) error { return nil })
	assert.Error(t, err)
}

func TestMemStatAndOffline(t *testing.T) {
	mem := fsys.NewMem()
	mtime := time.Unix(1700000000, 12345)
	mem.WriteFile("/root/f.txt", []byte("abc"), mtime)

	st, err := mem.Stat("/root/f.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Size)
	assert.Equal(t, mtime.UnixNano(), st.MtimeNs)
	assert.False(t, st.IsDir)
	assert.False(t, st.Offline)

	mem.SetOffline("/root/f.txt", true)
	st, err = mem.Stat("/root/f.txt")
	require.NoError(t, err)
	assert.True(t, st.Offline)
}

func TestMemLstatReportsSymlink(t *testing.T) {
	mem := fsys.NewMem()
	mem.Symlink("/root/link")

	st, err := mem.Lstat("/root/link")
	require.NoError(t, err)
	assert.True(t, st.IsSymlink)

	st, err = mem.Stat("/root/link")
	require.NoError(t, err)
	assert.False(t, st.IsSymlink)
}

func TestMemOpenCounts(t *testing.T) {
	mem := fsys.NewMem()
	mem.WriteFile("/root/f.txt", []byte("abc"), time.Now())

	r, err := mem.Open("/root/f.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.Equal(t, "abc", string(data))
	assert.Equal(t, 1, mem.OpenCount("/root/f.txt"))
	assert.Equal(t, 0, mem.OpenCount("/root/other.txt"))
}

func TestMemRenameKeepsContent(t *testing.T) {
	mem := fsys.NewMem()
	mtime := time.Unix(1700000000, 0)
	mem.WriteFile("/root/old.txt", []byte("abc"), mtime)

	mem.Rename("/root/old.txt", "/root/sub/new.txt")

	_, err := mem.Stat("/root/old.txt")
	assert.Error(t, err)

	st, err := mem.Stat("/root/sub/new.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Size)
	assert.Equal(t, mtime.UnixNano(), st.MtimeNs)
}
