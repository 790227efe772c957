// Package hashing computes streaming content digests for index records.
// Digests identify file content across renames; xxhash64 is fast enough to
// run inline during a scan.
package hashing

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/jamesainslie/fidx/pkg/fidx/fsys"
)

// chunkSize is the read buffer used when streaming file content. Files are
// never loaded whole.
const chunkSize = 64 * 1024

// Hasher produces content digests from a filesystem.
type Hasher struct {
	fs fsys.FS
}

// New returns a hasher reading through fs.
func New(fs fsys.FS) *Hasher {
	return &Hasher{fs: fs}
}

// File hashes the file's content in fixed-size chunks. When maxSize is
// positive and the file is larger, no digest is computed and "" is returned
// with a nil error. The hasher has no notion of offline placeholders; callers
// must not ask it to read one.
func (h *Hasher) File(path string, maxSize int64) (string, error) {
	st, err := h.fs.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if maxSize > 0 && st.Size > maxSize {
		return "", nil
	}

	r, err := h.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	d := xxhash.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(d, r, buf); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return format(d.Sum64()), nil
}

// Bytes hashes an in-memory byte slice.
func Bytes(b []byte) string {
	return format(xxhash.Sum64(b))
}

func format(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
