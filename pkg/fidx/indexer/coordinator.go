// Package indexer owns the index run lifecycle: it opens a run, drives the
// directory scanner across the configured roots, and seals the run with
// aggregated stats or a failure record. At most one run is active at a time.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/fidx/pkg/fidx/logging"
	"github.com/jamesainslie/fidx/pkg/fidx/scanner"
	"github.com/jamesainslie/fidx/pkg/fidx/store"
)

// ErrRunActive is returned when a rebuild starts while another run is
// running. Callers retry once the active run ends.
var ErrRunActive = store.ErrRunActive

// ErrRootNotFound is returned for a scoped rebuild of an unknown root id.
var ErrRootNotFound = errors.New("unknown root")

// Options tune a single rebuild.
type Options struct {
	// ForceHash re-hashes every non-placeholder file regardless of size.
	ForceHash bool
}

// Coordinator runs rebuilds over the configured roots.
type Coordinator struct {
	store   *store.Store
	scanner *scanner.Scanner
	roots   []string // canonical root paths, configuration order
	log     *logging.Logger
}

// New creates a coordinator. roots are the policy-canonicalized root paths to
// register and scan on a full rebuild.
func New(st *store.Store, sc *scanner.Scanner, roots []string) *Coordinator {
	return &Coordinator{
		store:   st,
		scanner: sc,
		roots:   roots,
		log:     logging.Get("indexer"),
	}
}

// Rebuild runs a full rebuild across every enabled configured root. Rescan is
// the same operation. Returns the sealed run record; the run never stays in
// running, whatever fails.
func (c *Coordinator) Rebuild(ctx context.Context, opts Options) (*store.IndexRun, error) {
	roots, err := c.registerRoots()
	if err != nil {
		return nil, err
	}
	return c.run(ctx, store.KindFull, roots, opts)
}

// RebuildRoot runs a partial rebuild scoped to one root id. The root must
// already exist; unknown ids fail with ErrRootNotFound before any run record
// is created.
func (c *Coordinator) RebuildRoot(ctx context.Context, rootID string, opts Options) (*store.IndexRun, error) {
	root, err := c.store.GetRoot(rootID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootID)
		}
		return nil, err
	}
	return c.run(ctx, store.KindPartial, []*store.Root{root}, opts)
}

// Status returns the active run (nil when idle) and the last completed run.
func (c *Coordinator) Status() (active, last *store.IndexRun, err error) {
	if active, err = c.store.ActiveRun(); err != nil {
		return nil, nil, err
	}
	if last, err = c.store.LastCompletedRun(); err != nil {
		return nil, nil, err
	}
	return active, last, nil
}

// RootStats returns per-root aggregate counts.
func (c *Coordinator) RootStats(rootID string) (store.RootStats, error) {
	if _, err := c.store.GetRoot(rootID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.RootStats{}, fmt.Errorf("%w: %s", ErrRootNotFound, rootID)
		}
		return store.RootStats{}, err
	}
	return c.store.CountByRoot(rootID)
}

// CancelStaleRuns flips running runs older than maxAge to cancelled. This is
// the administrative sweep for runs left behind by a dead process; it is not
// a cancellation signal the scanner observes.
func (c *Coordinator) CancelStaleRuns(maxAge time.Duration) (int, error) {
	n, err := c.store.CancelStaleRuns(maxAge)
	if n > 0 {
		c.log.Warn("cancelled stale runs", "count", n, "max_age", maxAge)
	}
	return n, err
}

// registerRoots upserts a Root row per configured path and returns the
// enabled ones in configuration order.
func (c *Coordinator) registerRoots() ([]*store.Root, error) {
	var roots []*store.Root
	for _, path := range c.roots {
		root, err := c.store.EnsureRoot(path)
		if err != nil {
			return nil, fmt.Errorf("register root %s: %w", path, err)
		}
		if root.Enabled {
			roots = append(roots, root)
		}
	}
	return roots, nil
}

// run executes the lifecycle: open the run, scan each root inside a per-root
// error boundary, seal with completed or failed. The deferred seal guarantees
// the run record reaches a terminal state even on a run-fatal error.
func (c *Coordinator) run(ctx context.Context, kind store.RunKind, roots []*store.Root, opts Options) (run *store.IndexRun, err error) {
	run = &store.IndexRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
	if err := c.store.CreateRun(run); err != nil {
		return nil, err
	}
	c.log.Info("run started", "run_id", run.ID, "kind", kind, "roots", len(roots))

	var stats store.RunStats
	defer func() {
		status := store.StatusCompleted
		if r := recover(); r != nil {
			err = fmt.Errorf("index run panicked: %v", r)
		}
		if err != nil {
			status = store.StatusFailed
			stats.Failure = err.Error()
		}
		if finishErr := c.store.FinishRun(run.ID, status, stats); finishErr != nil && err == nil {
			err = finishErr
		}
		if sealed, getErr := c.store.GetRun(run.ID); getErr == nil {
			run = sealed
		}
		c.log.Info("run finished", "run_id", run.ID, "status", status,
			"added", stats.Added, "updated", stats.Updated,
			"removed", stats.Removed, "errors", stats.Errors)
	}()

	for _, root := range roots {
		// The walk itself is not cancellable; the context is only honored
		// between roots.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			return run, err
		}
		rootStats, scanErr := c.scanner.ScanRoot(root, opts.ForceHash)
		stats.Add(rootStats)
		if scanErr != nil {
			// Per-root boundary: log, count, move to the next root.
			stats.Errors++
			c.log.Error("root scan failed", "root", root.CanonicalPath, "error", scanErr)
		}
	}
	return run, err
}
