package store

import "time"

// Root is a configured top-level directory the engine indexes.
// At most one Root exists per canonical path.
type Root struct {
	ID            string `json:"id"`
	CanonicalPath string `json:"canonical_path"`
	Enabled       bool   `json:"enabled"`
}

// FileRecord is the durable identity of one file or directory. FileID is the
// unit of identity tracked across renames: it survives a detected rename and
// is replaced (old row deleted, new row created) whenever a move is not
// detected as one.
type FileRecord struct {
	FileID        string    `json:"file_id"`
	RootID        string    `json:"root_id"`
	CanonicalPath string    `json:"canonical_path"`
	RelPath       string    `json:"rel_path"`
	Size          int64     `json:"size"`
	MtimeNs       int64     `json:"mtime_ns"`
	ContentHash   string    `json:"content_hash,omitempty"`
	IsDir         bool      `json:"is_dir"`
	Ext           string    `json:"ext,omitempty"`
	IndexedAt     time.Time `json:"indexed_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

// FileAlias is one row of the append-only rename ledger. A chain of renames
// A→B→C produces two rows, each independently matchable, so a lookup on any
// historical name can reach the current path.
type FileAlias struct {
	AliasID          string    `json:"alias_id"`
	FileID           string    `json:"file_id"`
	OldCanonicalPath string    `json:"old_canonical_path"`
	NewCanonicalPath string    `json:"new_canonical_path"`
	CreatedAt        time.Time `json:"created_at"`
}

// RunKind distinguishes full rebuilds from single-root partial ones.
type RunKind string

// Run kinds.
const (
	KindFull    RunKind = "full"
	KindPartial RunKind = "partial"
)

// RunStatus is the lifecycle state of an index run.
type RunStatus string

// Run statuses. Running transitions to completed or failed; cancelled is an
// administrative flip for runs presumed dead.
const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is an end state.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// RunStats aggregates per-root scan results into a run record.
type RunStats struct {
	Added     int64         `json:"added"`
	Updated   int64         `json:"updated"`
	Removed   int64         `json:"removed"`
	Errors    int64         `json:"errors"`
	TotalSize int64         `json:"total_size"`
	Duration  time.Duration `json:"duration_ns"`
	Failure   string        `json:"failure,omitempty"`
}

// Add accumulates another stats block into this one. Duration is not summed;
// the run owns its own wall clock.
func (s *RunStats) Add(other RunStats) {
	s.Added += other.Added
	s.Updated += other.Updated
	s.Removed += other.Removed
	s.Errors += other.Errors
	s.TotalSize += other.TotalSize
}

// IndexRun is one rebuild/rescan execution across one or more roots.
// At most one run is in StatusRunning at any time.
type IndexRun struct {
	ID         string     `json:"id"`
	Kind       RunKind    `json:"kind"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     RunStatus  `json:"status"`
	Stats      RunStats   `json:"stats"`
}

// RootStats are per-root aggregate counts served to status callers.
type RootStats struct {
	Files     int64 `json:"files"`
	Dirs      int64 `json:"dirs"`
	TotalSize int64 `json:"total_size"`
}
