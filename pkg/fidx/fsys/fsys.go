// Package fsys abstracts the filesystem operations the index engine needs:
// stat with symlink and cloud-placeholder awareness, a sequential recursive
// walk, and byte reads. The engine never touches the os package directly,
// which keeps the scanner testable against an in-memory filesystem.
package fsys

import (
	"io"
	"io/fs"
)

// FileStat is the subset of file metadata the engine cares about.
// MtimeNs is nanoseconds since the Unix epoch.
type FileStat struct {
	Size      int64
	MtimeNs   int64
	IsDir     bool
	IsSymlink bool

	// Offline reports a cloud-sync placeholder whose content is not locally
	// resident. Reading such a file would force a download.
	Offline bool
}

// FS is the filesystem contract consumed by the scanner, hasher, and path
// policy.
type FS interface {
	// Stat follows symlinks.
	Stat(path string) (FileStat, error)

	// Lstat does not follow symlinks; IsSymlink is only meaningful here.
	Lstat(path string) (FileStat, error)

	// Walk recursively visits root. The walk is sequential and does not
	// follow symlinks. fn may return fs.SkipDir to prune a directory.
	Walk(root string, fn fs.WalkDirFunc) error

	// Open opens the file for reading.
	Open(path string) (io.ReadCloser, error)
}
