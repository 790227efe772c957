// Package config provides configuration management for the file index
// engine and CLI.
package config

import "time"

// Default configuration values.
const (
	// DefaultHashMaxSize is the routine-scan hashing threshold. Files at or
	// above it are left without a content hash unless a rebuild forces one.
	DefaultHashMaxSize = "1 MiB"

	// DefaultBlockSymlinks enables symlink traversal blocking.
	DefaultBlockSymlinks = true

	// DefaultStaleRunAge is how old a running run must be before the
	// administrative sweep flips it to cancelled.
	DefaultStaleRunAge = 24 * time.Hour

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"
)
