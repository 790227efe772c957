package hashing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/fidx/pkg/fidx/fsys"
	"github.com/jamesainslie/fidx/pkg/fidx/hashing"
)

func TestFileDigestMatchesBytes(t *testing.T) {
	mem := fsys.NewMem()
	mem.WriteFile("/data/a.txt", []byte("hello"), time.Now())

	h := hashing.New(mem)
	digest, err := h.File("/data/a.txt", 0)
	require.NoError(t, err)
	assert.Equal(t, hashing.Bytes([]byte("hello")), digest)
	assert.Len(t, digest, 16)
}

func TestEqualContentEqualDigest(t *testing.T) {
	mem := fsys.NewMem()
	mem.WriteFile("/data/a.txt", []byte("same content"), time.Now())
	mem.WriteFile("/data/b.txt", []byte("same content"), time.Now())
	mem.WriteFile("/data/c.txt", []byte("different"), time.Now())

	h := hashing.New(mem)
	da, err := h.File("/data/a.txt", 0)
	require.NoError(t, err)
	db, err := h.File("/data/b.txt", 0)
	require.NoError(t, err)
	dc, err := h.File("/data/c.txt", 0)
	require.NoError(t, err)

	assert.Equal(t, da, db)
	assert.NotEqual(t, da, dc)
}

func TestMaxSizeCutoffSkipsDigest(t *testing.T) {
	mem := fsys.NewMem()
	mem.WriteFile("/data/big.bin", make([]byte, 2048), time.Now())

	h := hashing.New(mem)
	digest, err := h.File("/data/big.bin", 1024)
	require.NoError(t, err)
	assert.Empty(t, digest)

	// No cutoff hashes the same file.
	digest, err = h.File("/data/big.bin", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, digest)
}

func TestMissingFileErrors(t *testing.T) {
	h := hashing.New(fsys.NewMem())
	_, err := h.File("/data/nope.txt", 0)
	assert.Error(t, err)
}
