package fsys

import (
	"io"
	"io/fs"
	"os"

	"github.com/charlievieth/fastwalk"
)

// OS is the real-filesystem implementation of FS.
type OS struct{}

// NewOS returns the OS-backed filesystem.
func NewOS() *OS {
	return &OS{}
}

// Stat follows symlinks.
func (*OS) Stat(path string) (FileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileStat{}, err
	}
	return statFromInfo(info, false), nil
}

// Lstat does not follow symlinks.
func (*OS) Lstat(path string) (FileStat, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return FileStat{}, err
	}
	return statFromInfo(info, info.Mode()&os.ModeSymlink != 0), nil
}

// Walk visits root sequentially. fastwalk is configured with a single worker
// so the walk order and the write pattern stay deterministic; symlinks are
// never followed.
func (*OS) Walk(root string, fn fs.WalkDirFunc) error {
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: 1,
	}
	return fastwalk.Walk(&conf, root, fn)
}

// Open opens the file for reading.
func (*OS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func statFromInfo(info os.FileInfo, symlink bool) FileStat {
	return FileStat{
		Size:      info.Size(),
		MtimeNs:   info.ModTime().UnixNano(),
		IsDir:     info.IsDir(),
		IsSymlink: symlink,
		Offline:   isOffline(info),
	}
}
