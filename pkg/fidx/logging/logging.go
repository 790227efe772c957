// Package logging provides the shared logging system for the index engine
// and CLI, built on charmbracelet/log with per-component levels and a
// size-rotated log file.
//
// Basic usage:
//
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "root", "/data")
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level string into a charm log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// MaxSizeBytes rotates the file once it grows past this size.
	// Zero disables rotation.
	MaxSizeBytes int64

	// MaxBackups is how many rotated files to keep.
	MaxBackups int
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// ConsoleLevel enables stderr output at the given level.
	// Empty disables console output.
	ConsoleLevel string

	// Components maps component names to level overrides.
	Components map[string]string

	// Rotation configures log file rotation. Zero values take defaults.
	Rotation RotationConfig
}

// Logger is a component-scoped logger writing to the log file and,
// optionally, the console.
type Logger struct {
	file    *log.Logger
	console *log.Logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) { l.each(func(lg *log.Logger) { lg.Debug(msg, args...) }) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { l.each(func(lg *log.Logger) { lg.Info(msg, args...) }) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) { l.each(func(lg *log.Logger) { lg.Warn(msg, args...) }) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) { l.each(func(lg *log.Logger) { lg.Error(msg, args...) }) }

func (l *Logger) each(fn func(*log.Logger)) {
	fn(l.file)
	if l.console != nil {
		fn(l.console)
	}
}

var (
	mu         sync.Mutex
	fileWriter io.WriteCloser
	current    Config
	ready      bool
)

// Init opens the log file and installs the configuration. Loggers obtained
// from Get before Init discard output.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if _, err := ParseLevel(cfg.Level); err != nil {
		return err
	}
	if cfg.ConsoleLevel != "" {
		if _, err := ParseLevel(cfg.ConsoleLevel); err != nil {
			return err
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	rot := cfg.Rotation
	if rot.MaxSizeBytes == 0 {
		rot.MaxSizeBytes = defaultMaxLogSize
	}
	if rot.MaxBackups == 0 {
		rot.MaxBackups = defaultMaxBackups
	}
	w, err := newRotatingWriter(path, rot)
	if err != nil {
		return err
	}

	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = w
	current = cfg
	ready = true
	return nil
}

// Close flushes and closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	ready = false
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// Get returns a logger for the named component, honoring any per-component
// level override from the configuration.
func Get(component string) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if !ready {
		return &Logger{file: log.New(io.Discard)}
	}

	level, _ := ParseLevel(current.Level)
	if override, ok := current.Components[component]; ok {
		if l, err := ParseLevel(override); err == nil {
			level = l
		}
	}

	file := log.NewWithOptions(fileWriter, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
		Prefix:          component,
	})

	l := &Logger{file: file}
	if current.ConsoleLevel != "" {
		consoleLevel, _ := ParseLevel(current.ConsoleLevel)
		l.console = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Level:           consoleLevel,
			Prefix:          component,
		})
	}
	return l
}

// DefaultLogPath returns $XDG_STATE_HOME/fidx/fidx.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "fidx", "fidx.log")
}
