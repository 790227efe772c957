package logging

import (
	"fmt"
	"os"
	"sync"
)

const (
	defaultMaxLogSize = 10 * 1024 * 1024
	defaultMaxBackups = 5
)

// rotatingWriter appends to a log file and rotates it by size, keeping a
// bounded set of numbered backups (fidx.log.1 is the newest).
type rotatingWriter struct {
	mu   sync.Mutex
	path string
	conf RotationConfig
	file *os.File
	size int64
}

func newRotatingWriter(path string, conf RotationConfig) (*rotatingWriter, error) {
	w := &rotatingWriter{path: path, conf: conf}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *rotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file = f
	w.size = info.Size()
	return nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conf.MaxSizeBytes > 0 && w.size+int64(len(p)) > w.conf.MaxSizeBytes {
		// A failed rotation must not lose the log line; keep writing to the
		// oversized file.
		_ = w.rotate()
	}
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// rotate shifts path.N to path.N+1, dropping the oldest, then reopens a
// fresh file at path.
func (w *rotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil

	oldest := fmt.Sprintf("%s.%d", w.path, w.conf.MaxBackups)
	_ = os.Remove(oldest)
	for i := w.conf.MaxBackups - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", w.path, i)
		to := fmt.Sprintf("%s.%d", w.path, i+1)
		if _, err := os.Stat(from); err == nil {
			_ = os.Rename(from, to)
		}
	}
	_ = os.Rename(w.path, w.path+".1")

	return w.open()
}
