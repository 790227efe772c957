package fsys

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Mem is an in-memory FS used by tests across the engine packages. It can
// mark entries as symlinks or offline placeholders, and it counts Open calls
// so tests can assert that placeholder content was never touched.
type Mem struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	opens   map[string]int
}

type memEntry struct {
	data    []byte
	mtimeNs int64
	dir     bool
	symlink bool
	offline bool
}

// NewMem returns an empty in-memory filesystem.
func NewMem() *Mem {
	return &Mem{
		entries: make(map[string]*memEntry),
		opens:   make(map[string]int),
	}
}

// MkdirAll creates a directory and all its ancestors.
func (m *Mem) MkdirAll(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAllLocked(filepath.Clean(path))
}

func (m *Mem) mkdirAllLocked(path string) {
	for p := path; ; p = filepath.Dir(p) {
		if e, ok := m.entries[p]; !ok || !e.dir {
			m.entries[p] = &memEntry{dir: true, mtimeNs: time.Now().UnixNano()}
		}
		if p == filepath.Dir(p) {
			return
		}
	}
}

// WriteFile creates or replaces a file, creating ancestor directories.
func (m *Mem) WriteFile(path string, data []byte, mtime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.mkdirAllLocked(filepath.Dir(path))
	m.entries[path] = &memEntry{
		data:    append([]byte(nil), data...),
		mtimeNs: mtime.UnixNano(),
	}
}

// Symlink records a symlink at path. Targets are not modeled; Lstat reports
// the entry as a symlink, which is all the path policy inspects.
func (m *Mem) Symlink(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.mkdirAllLocked(filepath.Dir(path))
	m.entries[path] = &memEntry{symlink: true, dir: true, mtimeNs: time.Now().UnixNano()}
}

// SetOffline flags an existing file as a cloud placeholder.
func (m *Mem) SetOffline(path string, offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[filepath.Clean(path)]; ok {
		e.offline = offline
	}
}

// Remove deletes a path and everything under it.
func (m *Mem) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	for p := range m.entries {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.entries, p)
		}
	}
}

// Rename moves a single file entry, keeping its content and mtime.
func (m *Mem) Rename(oldPath, newPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldPath = filepath.Clean(oldPath)
	newPath = filepath.Clean(newPath)
	e, ok := m.entries[oldPath]
	if !ok {
		return
	}
	delete(m.entries, oldPath)
	m.mkdirAllLocked(filepath.Dir(newPath))
	m.entries[newPath] = e
}

// OpenCount returns how many times the file has been opened for reading.
func (m *Mem) OpenCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens[filepath.Clean(path)]
}

// Stat implements FS.
func (m *Mem) Stat(path string) (FileStat, error) {
	return m.stat(path, false)
}

// Lstat implements FS.
func (m *Mem) Lstat(path string) (FileStat, error) {
	return m.stat(path, true)
}

func (m *Mem) stat(path string, lstat bool) (FileStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[filepath.Clean(path)]
	if !ok {
		return FileStat{}, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
	}
	st := FileStat{
		Size:    int64(len(e.data)),
		MtimeNs: e.mtimeNs,
		IsDir:   e.dir,
		Offline: e.offline,
	}
	if lstat {
		st.IsSymlink = e.symlink
	}
	return st, nil
}

// Open implements FS and counts the read.
func (m *Mem) Open(path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	e, ok := m.entries[path]
	if !ok || e.dir {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	m.opens[path]++
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

// Walk implements FS with a deterministic, name-sorted traversal.
func (m *Mem) Walk(root string, fn fs.WalkDirFunc) error {
	root = filepath.Clean(root)

	m.mu.Lock()
	if e, ok := m.entries[root]; !ok || !e.dir {
		m.mu.Unlock()
		return &os.PathError{Op: "walk", Path: root, Err: os.ErrNotExist}
	}
	children := make(map[string][]string)
	stats := make(map[string]memEntry)
	prefix := root + string(filepath.Separator)
	for p, e := range m.entries {
		stats[p] = *e
		if p == root || !strings.HasPrefix(p, prefix) {
			continue
		}
		parent := filepath.Dir(p)
		children[parent] = append(children[parent], filepath.Base(p))
	}
	stats[root] = *m.entries[root]
	m.mu.Unlock()

	for _, names := range children {
		sort.Strings(names)
	}

	err := m.walkDir(root, children, stats, fn)
	if err == fs.SkipDir || err == fs.SkipAll { //nolint:errorlint // sentinel comparison per io/fs contract
		return nil
	}
	return err
}

func (m *Mem) walkDir(path string, children map[string][]string, stats map[string]memEntry, fn fs.WalkDirFunc) error {
	e := stats[path]
	if err := fn(path, memDirEntry{name: filepath.Base(path), e: e}, nil); err != nil {
		if err == fs.SkipDir && e.dir { //nolint:errorlint // sentinel comparison per io/fs contract
			return nil
		}
		return err
	}
	if !e.dir {
		return nil
	}
	for _, name := range children[path] {
		child := filepath.Join(path, name)
		if err := m.walkDir(child, children, stats, fn); err != nil {
			// SkipDir from a file callback skips the remainder of this
			// directory, matching fs.WalkDir.
			if err == fs.SkipDir { //nolint:errorlint // sentinel comparison per io/fs contract
				return nil
			}
			return err
		}
	}
	return nil
}

type memDirEntry struct {
	name string
	e    memEntry
}

func (d memDirEntry) Name() string { return d.name }
func (d memDirEntry) IsDir() bool  { return d.e.dir }

func (d memDirEntry) Type() fs.FileMode {
	switch {
	case d.e.symlink:
		return fs.ModeSymlink
	case d.e.dir:
		return fs.ModeDir
	default:
		return 0
	}
}

func (d memDirEntry) Info() (fs.FileInfo, error) {
	return memFileInfo{name: d.name, e: d.e}, nil
}

type memFileInfo struct {
	name string
	e    memEntry
}

func (i memFileInfo) Name() string       { return i.name }
func (i memFileInfo) Size() int64        { return int64(len(i.e.data)) }
func (i memFileInfo) Mode() fs.FileMode  { return memDirEntry{name: i.name, e: i.e}.Type() }
func (i memFileInfo) ModTime() time.Time { return time.Unix(0, i.e.mtimeNs) }
func (i memFileInfo) IsDir() bool        { return i.e.dir }
func (i memFileInfo) Sys() any           { return nil }
