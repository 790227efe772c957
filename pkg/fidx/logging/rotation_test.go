package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingWriterRotatesBySize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fidx.log")
	w, err := newRotatingWriter(path, RotationConfig{MaxSizeBytes: 64, MaxBackups: 2})
	if err != nil {
		t.Fatalf("newRotatingWriter failed: %v", err)
	}
	defer w.Close()

	first := bytes.Repeat([]byte("a"), 40)
	second := bytes.Repeat([]byte("b"), 40)
	for _, chunk := range [][]byte{first, second} {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	rotated, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("Expected rotated backup: %v", err)
	}
	if !bytes.Equal(rotated, first) {
		t.Errorf("Backup should hold the first chunk, got %d bytes", len(rotated))
	}

	live, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(live, second) {
		t.Errorf("Live file should hold the second chunk, got %d bytes", len(live))
	}
}

func TestRotatingWriterKeepsBoundedBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fidx.log")
	w, err := newRotatingWriter(path, RotationConfig{MaxSizeBytes: 8, MaxBackups: 2})
	if err != nil {
		t.Fatalf("newRotatingWriter failed: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		if _, err := w.Write([]byte("12345678")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("Expected backup .1: %v", err)
	}
	if _, err := os.Stat(path + ".2"); err != nil {
		t.Errorf("Expected backup .2: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("Backup .3 should not exist, stat err = %v", err)
	}
}

func TestRotatingWriterZeroMaxNeverRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fidx.log")
	w, err := newRotatingWriter(path, RotationConfig{})
	if err != nil {
		t.Fatalf("newRotatingWriter failed: %v", err)
	}
	defer w.Close()

	for i := 0; i < 10; i++ {
		if _, err := w.Write([]byte("some log line\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Errorf("No rotation expected, stat err = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 140 {
		t.Errorf("Expected 140 bytes, got %d", info.Size())
	}
}
