package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// CreateRun persists a new run in StatusRunning and claims the active-run
// pointer. The claim happens in one read-write transaction; with badger's
// conflict detection a concurrent CreateRun loses at commit, so at most one
// run is ever running. Returns ErrRunActive when another run holds the slot.
func (s *Store) CreateRun(run *IndexRun) error {
	run.Status = StatusRunning
	err := s.db.Update(func(txn *badger.Txn) error {
		var activeID string
		err := getJSON(txn, []byte(activeRunKey), &activeID)
		if err == nil {
			return fmt.Errorf("%w: run %s", ErrRunActive, activeID)
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := setJSON(txn, []byte(prefixRun+run.ID), run); err != nil {
			return err
		}
		return setJSON(txn, []byte(activeRunKey), run.ID)
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: concurrent start", ErrRunActive)
	}
	return err
}

// FinishRun seals a run with a terminal status and its aggregated stats, and
// releases the active-run pointer if this run holds it.
func (s *Store) FinishRun(id string, status RunStatus, stats RunStats) error {
	if !status.Terminal() {
		return fmt.Errorf("finish run %s: %s is not a terminal status", id, status)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var run IndexRun
		if err := getJSON(txn, []byte(prefixRun+id), &run); err != nil {
			return err
		}
		now := time.Now()
		run.Status = status
		run.FinishedAt = &now
		run.Stats = stats
		run.Stats.Duration = now.Sub(run.StartedAt)
		if err := setJSON(txn, []byte(prefixRun+id), &run); err != nil {
			return err
		}
		return s.releaseActive(txn, id)
	})
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(id string) (*IndexRun, error) {
	var run IndexRun
	if err := s.viewJSON([]byte(prefixRun+id), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ActiveRun returns the currently running run, or nil when none is active.
func (s *Store) ActiveRun() (*IndexRun, error) {
	var id string
	err := s.viewJSON([]byte(activeRunKey), &id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.GetRun(id)
}

// LastCompletedRun returns the most recently finished completed run, or nil.
func (s *Store) LastCompletedRun() (*IndexRun, error) {
	var last *IndexRun
	err := s.forEachRun(func(run *IndexRun) {
		if run.Status != StatusCompleted || run.FinishedAt == nil {
			return
		}
		if last == nil || run.FinishedAt.After(*last.FinishedAt) {
			last = run
		}
	})
	return last, err
}

// CancelStaleRuns flips runs still marked running but older than maxAge to
// cancelled. This is the administrative sweep for runs presumed dead; the
// scanner itself never observes it.
func (s *Store) CancelStaleRuns(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	var stale []string
	err := s.forEachRun(func(run *IndexRun) {
		if run.Status == StatusRunning && run.StartedAt.Before(cutoff) {
			stale = append(stale, run.ID)
		}
	})
	if err != nil {
		return 0, err
	}

	for _, id := range stale {
		err := s.db.Update(func(txn *badger.Txn) error {
			var run IndexRun
			if err := getJSON(txn, []byte(prefixRun+id), &run); err != nil {
				return err
			}
			if run.Status != StatusRunning {
				return nil
			}
			now := time.Now()
			run.Status = StatusCancelled
			run.FinishedAt = &now
			if err := setJSON(txn, []byte(prefixRun+id), &run); err != nil {
				return err
			}
			return s.releaseActive(txn, id)
		})
		if err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

// releaseActive clears the active-run pointer when owned by runID.
func (s *Store) releaseActive(txn *badger.Txn, runID string) error {
	var activeID string
	err := getJSON(txn, []byte(activeRunKey), &activeID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if activeID != runID {
		return nil
	}
	return txn.Delete([]byte(activeRunKey))
}

func (s *Store) forEachRun(fn func(*IndexRun)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRun)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			run := &IndexRun{}
			err := it.Item().Value(func(val []byte) error {
				return unmarshalInto(val, run)
			})
			if err != nil {
				return err
			}
			fn(run)
		}
		return nil
	})
}
